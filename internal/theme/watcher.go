package theme

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the user themes directory and reports changed themes.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	catalog *Catalog
	logger  *slog.Logger

	onChange func(name string)

	done    chan struct{}
	stopped chan struct{}
	running bool
}

// NewWatcher creates a watcher for the catalog's themes directory.
func NewWatcher(catalog *Catalog, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher: fw,
		catalog: catalog,
		logger:  logger,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

// SetChangeCallback sets the callback invoked with the name of a changed
// theme. A changed partial reports an empty name, since any theme may import it.
func (w *Watcher) SetChangeCallback(callback func(name string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = callback
}

// Start begins watching. It returns once the directory is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.catalog.Dir()); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	go w.watch(ctx)

	w.logger.Debug("theme watcher started", "dir", w.catalog.Dir())
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.stopped)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.handle(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("theme watcher error", "error", err)

		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handle(path string) {
	base := filepath.Base(path)
	if filepath.Ext(base) != ".css" {
		return
	}

	name := strings.TrimSuffix(base, ".css")
	if strings.HasPrefix(name, "_") {
		name = ""
	}
	w.catalog.Invalidate(name)

	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	w.logger.Info("theme file changed", "path", path)
	if callback != nil {
		callback(name)
	}
}

// Stop stops the watcher and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	err := w.watcher.Close()
	<-w.stopped
	w.logger.Debug("theme watcher stopped")
	return err
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
