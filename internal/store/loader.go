package store

import (
	"context"

	"github.com/jmylchreest/themekit/internal/model"
)

// startLoaders runs each configured retrieval function in its own goroutine.
// Neither waits for the other; they populate independent fields.
func (s *Store) startLoaders(ctx context.Context) {
	loads := []struct {
		kind  model.Kind
		fetch FetchFunc
	}{
		{model.KindHeader, s.fetchHeaders},
		{model.KindFooter, s.fetchFooters},
	}

	for _, l := range loads {
		if l.fetch == nil {
			continue
		}
		s.loaders.Add(1)
		go s.load(ctx, l.kind, l.fetch)
	}
}

func (s *Store) load(ctx context.Context, kind model.Kind, fetch FetchFunc) {
	defer s.loaders.Done()

	s.logger.Debug("loading variants", "kind", kind)
	variants, err := fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Debug("discarding variants loaded after close", "kind", kind)
		return
	}

	if err != nil {
		s.logger.Warn("failed to load variants", "kind", kind, "error", err)
		if kind == model.KindFooter {
			s.state.FootersErr = err.Error()
		} else {
			s.state.HeadersErr = err.Error()
		}
		s.state.Revision++
		s.notifyChange(ChangeEvent{Type: ChangeTypeLoadFailed, Revision: s.state.Revision, Kind: kind})
		return
	}

	set := append([]model.Variant{}, variants...)
	changeType := ChangeTypeHeadersLoaded
	if kind == model.KindFooter {
		s.state.Footers = set
		s.state.Footer = model.First(set)
		s.state.FootersLoaded = true
		s.state.FootersErr = ""
		changeType = ChangeTypeFootersLoaded
	} else {
		s.state.Headers = set
		s.state.Header = model.First(set)
		s.state.HeadersLoaded = true
		s.state.HeadersErr = ""
	}
	s.state.Revision++
	s.notifyChange(ChangeEvent{Type: changeType, Revision: s.state.Revision, Kind: kind})

	s.logger.Info("loaded variants", "kind", kind, "count", len(set))
}
