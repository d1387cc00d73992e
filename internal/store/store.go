// Package store provides the theme store: the single owner of the current
// theme, header and footer selections and the sets they are chosen from.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/themekit/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeTheme indicates the theme name changed.
	ChangeTypeTheme ChangeType = iota
	// ChangeTypeHeader indicates the header selection changed.
	ChangeTypeHeader
	// ChangeTypeFooter indicates the footer selection changed.
	ChangeTypeFooter
	// ChangeTypeHeadersLoaded indicates the header set was populated.
	ChangeTypeHeadersLoaded
	// ChangeTypeFootersLoaded indicates the footer set was populated.
	ChangeTypeFootersLoaded
	// ChangeTypeLoadFailed indicates a retrieval function returned an error.
	ChangeTypeLoadFailed
)

func (c ChangeType) String() string {
	switch c {
	case ChangeTypeTheme:
		return "theme"
	case ChangeTypeHeader:
		return "header"
	case ChangeTypeFooter:
		return "footer"
	case ChangeTypeHeadersLoaded:
		return "headers-loaded"
	case ChangeTypeFootersLoaded:
		return "footers-loaded"
	case ChangeTypeLoadFailed:
		return "load-failed"
	default:
		return "unknown"
	}
}

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type     ChangeType
	Revision uint64
	Kind     model.Kind // set for load events
}

// FetchFunc retrieves the selectable variants for one kind.
type FetchFunc func(ctx context.Context) ([]model.Variant, error)

// Options configures a Store.
//
// Either Headers/Footers (static) or FetchHeaders/FetchFooters (fetching) may
// be given per kind, not both.
type Options struct {
	InitialTheme string
	Themes       []string

	Headers []model.Variant
	Footers []model.Variant

	FetchHeaders FetchFunc
	FetchFooters FetchFunc

	// StrictSelection rejects header/footer selections that are not members
	// of the current set. The default accepts them unchanged.
	StrictSelection bool

	Logger *slog.Logger
}

// Store holds the selection state with thread-safe operations.
type Store struct {
	mu    sync.RWMutex
	state model.Snapshot

	// effectMu orders theme commits with their hooks.
	effectMu sync.Mutex
	hooks    []func(theme string)

	fetchHeaders FetchFunc
	fetchFooters FetchFunc
	strict       bool
	logger       *slog.Logger

	subscribers []chan ChangeEvent

	mounted bool
	closed  bool
	cancel  context.CancelFunc
	loaders sync.WaitGroup
}

// New creates a Store from opts.
func New(opts Options) (*Store, error) {
	if len(opts.Themes) == 0 {
		return nil, ErrNoThemes
	}
	if opts.FetchHeaders != nil && opts.Headers != nil {
		return nil, ErrConflictingSources
	}
	if opts.FetchFooters != nil && opts.Footers != nil {
		return nil, ErrConflictingSources
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	initial := opts.InitialTheme
	if initial == "" {
		initial = model.DefaultTheme
	}

	s := &Store{
		state: model.Snapshot{
			Theme:  initial,
			Themes: append([]string(nil), opts.Themes...),
		},
		fetchHeaders: opts.FetchHeaders,
		fetchFooters: opts.FetchFooters,
		strict:       opts.StrictSelection,
		logger:       logger,
		subscribers:  make([]chan ChangeEvent, 0),
	}

	if opts.FetchHeaders == nil {
		s.state.Headers = append([]model.Variant{}, opts.Headers...)
		s.state.Header = model.First(s.state.Headers)
		s.state.HeadersLoaded = true
	} else {
		s.state.Headers = []model.Variant{}
	}
	if opts.FetchFooters == nil {
		s.state.Footers = append([]model.Variant{}, opts.Footers...)
		s.state.Footer = model.First(s.state.Footers)
		s.state.FootersLoaded = true
	} else {
		s.state.Footers = []model.Variant{}
	}

	return s, nil
}

// OnThemeChange registers fn to run after every committed theme change and
// once on Mount. Hooks run in registration order and must not call SetTheme.
func (s *Store) OnThemeChange(fn func(theme string)) {
	if fn == nil {
		return
	}
	s.effectMu.Lock()
	defer s.effectMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Mount fires the theme hooks for the initial theme and starts loading the
// header and footer sets. It may be called once.
func (s *Store) Mount(ctx context.Context) error {
	s.effectMu.Lock()
	defer s.effectMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.mounted {
		s.mu.Unlock()
		return ErrAlreadyMounted
	}
	s.mounted = true
	theme := s.state.Theme
	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.runHooks(theme)
	s.startLoaders(loadCtx)

	return nil
}

// SetTheme replaces the theme name. Any string is accepted. The Theme change
// event is sent after the hooks have run.
func (s *Store) SetTheme(name string) error {
	s.effectMu.Lock()
	defer s.effectMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.state.Theme == name {
		s.mu.Unlock()
		return nil
	}
	s.state.Theme = name
	s.state.Revision++
	revision := s.state.Revision
	s.mu.Unlock()

	s.logger.Debug("theme changed", "theme", name)
	s.runHooks(name)

	s.mu.Lock()
	if !s.closed {
		s.notifyChange(ChangeEvent{Type: ChangeTypeTheme, Revision: revision})
	}
	s.mu.Unlock()

	return nil
}

// SetHeader replaces the header selection.
func (s *Store) SetHeader(v model.Variant) error {
	return s.setVariant(model.KindHeader, v)
}

// SetFooter replaces the footer selection.
func (s *Store) SetFooter(v model.Variant) error {
	return s.setVariant(model.KindFooter, v)
}

func (s *Store) setVariant(kind model.Kind, v model.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	set := s.state.Choices(kind)
	if !model.Contains(set, v) {
		if s.strict {
			return ErrNotInChoiceSet
		}
		s.logger.Debug("selection is not in the current set", "kind", kind, "id", v.ID)
	}

	sel := v
	changeType := ChangeTypeHeader
	if kind == model.KindFooter {
		s.state.Footer = &sel
		changeType = ChangeTypeFooter
	} else {
		s.state.Header = &sel
	}
	s.state.Revision++
	s.notifyChange(ChangeEvent{Type: changeType, Revision: s.state.Revision})

	return nil
}

// Snapshot returns a consistent copy of the current state.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Theme returns the current theme name.
func (s *Store) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Theme
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 16)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Wait blocks until the header and footer loaders have returned.
func (s *Store) Wait() {
	s.loaders.Wait()
}

// Close marks the store as disposed and closes all subscriber channels.
// Loader results that arrive afterwards are discarded.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.cancel != nil {
		s.cancel()
	}

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	return nil
}

// runHooks must be called with effectMu held.
func (s *Store) runHooks(theme string) {
	for _, fn := range s.hooks {
		fn(theme)
	}
}

// notifyChange sends a change event to all subscribers (non-blocking).
// Callers hold s.mu.
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}
