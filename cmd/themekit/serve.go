package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/themekit/internal/server"
	"github.com/jmylchreest/themekit/internal/stylesheet"
	"github.com/jmylchreest/themekit/internal/theme"
)

var serveOpts struct {
	listen   string
	document string
	noWatch  bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the themed page and selection API",
	Long: `Serve a page whose stylesheet link follows the selected theme, together with
the theme, header and footer selectors.

Routes:
  GET  /                 page with selectors, header and footer
  GET  /api/state        current selection as JSON
  GET  /api/controls     selector widgets as JSON
  POST /api/{control}    choose an option (theme, header, footer)
  GET  /themes/{name}.css theme stylesheet
  GET  /ws               live state and stylesheet updates

Theme files in the user themes directory are watched; edits are pushed to
connected pages without a reload.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveOpts.listen, "listen", "",
		"Listen address (default from config server.listen)")
	serveCmd.Flags().StringVar(&serveOpts.document, "document", "",
		"HTML file whose <head> is served with the page")
	serveCmd.Flags().BoolVar(&serveOpts.noWatch, "no-watch", false,
		"Do not watch the user themes directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := loadDocument(serveOpts.document)
	if err != nil {
		return err
	}

	catalog := newCatalog()
	switcher := stylesheet.NewSwitcher(cfg.Stylesheet.LinkID, cfg.Stylesheet.BaseHref, logger)

	s, err := openStore(ctx, catalog, func(name string) {
		switcher.Apply(doc, name)
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	srv := server.New(server.Options{
		Store:    s,
		Document: doc,
		Catalog:  catalog,
		LinkID:   cfg.Stylesheet.LinkID,
		Logger:   logger,
	})

	if !serveOpts.noWatch && catalog.Dir() != "" {
		if watcher := startThemeWatcher(ctx, catalog, srv); watcher != nil {
			defer watcher.Stop()
		}
	}

	listen := serveOpts.listen
	if listen == "" {
		listen = cfg.Server.Listen
	}
	httpSrv := &http.Server{
		Addr:              listen,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		fmt.Fprintf(cmd.ErrOrStderr(), "themekit serving on http://%s\n", listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// loadDocument parses path, or returns an empty document when path is empty.
func loadDocument(path string) (*stylesheet.Document, error) {
	if path == "" {
		return stylesheet.NewDocument(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	return stylesheet.Parse(f)
}

// startThemeWatcher pushes stylesheet updates for edited theme files. A
// watcher that cannot start is logged and skipped.
func startThemeWatcher(ctx context.Context, catalog *theme.Catalog, srv *server.Server) *theme.Watcher {
	watcher, err := theme.NewWatcher(catalog, logger)
	if err != nil {
		logger.Warn("failed to create theme watcher", "error", err)
		return nil
	}
	watcher.SetChangeCallback(srv.NotifyStylesheet)

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("failed to start theme watcher", "dir", catalog.Dir(), "error", err)
		_ = watcher.Stop()
		return nil
	}
	return watcher
}
