package main

import (
	"context"
	"net/http"

	"github.com/jmylchreest/themekit/internal/config"
	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/store"
	"github.com/jmylchreest/themekit/internal/theme"
	"github.com/jmylchreest/themekit/internal/variant"
)

// newCatalog creates the theme catalog over the configured themes directory.
func newCatalog() *theme.Catalog {
	dir := cfg.Theme.Dir
	if dir == "" {
		var err error
		dir, err = theme.ThemesDir()
		if err != nil {
			logger.Warn("no user themes directory, using bundled themes only", "error", err)
		}
	}
	return theme.NewCatalog(dir, logger)
}

// themeNames returns the configured theme list, or every catalog theme.
func themeNames(catalog *theme.Catalog) []string {
	if len(cfg.Theme.Themes) > 0 {
		return cfg.Theme.Themes
	}
	return catalog.List()
}

// fetchFunc returns the retrieval function for kind per the configured source.
func fetchFunc(kind model.Kind) store.FetchFunc {
	location := cfg.Variants.Headers
	if kind == model.KindFooter {
		location = cfg.Variants.Footers
	}

	switch cfg.Variants.Source {
	case config.SourceDir:
		return variant.Dir(location, kind)
	case config.SourceHTTP:
		client := &http.Client{Timeout: cfg.Variants.Timeout.Duration()}
		return variant.HTTP(client, location, kind)
	default:
		return variant.Embedded(kind)
	}
}

// newStore creates an unmounted store from the configuration. In static mode
// the variant sets are resolved here; a failed set starts out empty.
func newStore(ctx context.Context, catalog *theme.Catalog) (*store.Store, error) {
	opts := store.Options{
		InitialTheme:    cfg.Theme.Initial,
		Themes:          themeNames(catalog),
		StrictSelection: cfg.Variants.Strict,
		Logger:          logger,
	}

	headers := fetchFunc(model.KindHeader)
	footers := fetchFunc(model.KindFooter)

	if cfg.Variants.Mode == config.ModeStatic {
		opts.Headers = loadStatic(ctx, model.KindHeader, headers)
		opts.Footers = loadStatic(ctx, model.KindFooter, footers)
	} else {
		opts.FetchHeaders = headers
		opts.FetchFooters = footers
	}

	return store.New(opts)
}

func loadStatic(ctx context.Context, kind model.Kind, fetch store.FetchFunc) []model.Variant {
	variants, err := variant.Load(ctx, fetch)
	if err != nil {
		logger.Warn("failed to load variants", "kind", kind, "error", err)
		return []model.Variant{}
	}
	return variants
}

// openStore creates and mounts a store. Hooks are registered before Mount so
// they observe the initial theme.
func openStore(ctx context.Context, catalog *theme.Catalog, hooks ...func(theme string)) (*store.Store, error) {
	s, err := newStore(ctx, catalog)
	if err != nil {
		return nil, err
	}
	for _, fn := range hooks {
		s.OnThemeChange(fn)
	}
	if err := s.Mount(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
