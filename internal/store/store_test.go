package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVariants(t *testing.T, kind model.Kind, names ...string) []model.Variant {
	t.Helper()
	out := make([]model.Variant, 0, len(names))
	for _, name := range names {
		v, err := model.NewVariant(kind, name, "<div>"+name+"</div>")
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

// gate is a retrieval function that blocks until released.
type gate struct {
	release chan struct{}
	result  []model.Variant
	err     error
}

func newGate(result []model.Variant, err error) *gate {
	return &gate{release: make(chan struct{}), result: result, err: err}
}

func (g *gate) fetch(ctx context.Context) ([]model.Variant, error) {
	select {
	case <-g.release:
		return g.result, g.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func waitForEvent(t *testing.T, ch <-chan ChangeEvent, want ChangeType) ChangeEvent {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "subscription closed while waiting for %s", want)
			if ev.Type == want {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrNoThemes)

	fetch := func(context.Context) ([]model.Variant, error) { return nil, nil }
	_, err = New(Options{
		Themes:       []string{"default"},
		Headers:      testVariants(t, model.KindHeader, "a"),
		FetchHeaders: fetch,
	})
	assert.ErrorIs(t, err, ErrConflictingSources)

	_, err = New(Options{
		Themes:       []string{"default"},
		Footers:      testVariants(t, model.KindFooter, "a"),
		FetchFooters: fetch,
	})
	assert.ErrorIs(t, err, ErrConflictingSources)
}

func TestNew_DefaultTheme(t *testing.T) {
	s, err := New(Options{Themes: []string{"default", "dark"}})
	require.NoError(t, err)
	defer s.Close()

	snap := s.Snapshot()
	assert.Equal(t, model.DefaultTheme, snap.Theme)
	assert.Equal(t, []string{"default", "dark"}, snap.Themes)
}

func TestStore_StaticVariant(t *testing.T) {
	headers := testVariants(t, model.KindHeader, "h1", "h2")
	footers := testVariants(t, model.KindFooter, "f1")

	s, err := New(Options{
		InitialTheme: "dark",
		Themes:       []string{"default", "dark"},
		Headers:      headers,
		Footers:      footers,
	})
	require.NoError(t, err)
	defer s.Close()

	snap := s.Snapshot()
	assert.Equal(t, "dark", snap.Theme)
	assert.Equal(t, headers, snap.Headers)
	require.NotNil(t, snap.Header)
	assert.Equal(t, headers[0], *snap.Header)
	require.NotNil(t, snap.Footer)
	assert.Equal(t, footers[0], *snap.Footer)
	assert.True(t, snap.HeadersLoaded)
	assert.True(t, snap.FootersLoaded)
}

func TestStore_FetchingVariant_EmptyBeforeResolve(t *testing.T) {
	hg := newGate(testVariants(t, model.KindHeader, "h1"), nil)
	fg := newGate(testVariants(t, model.KindFooter, "f1"), nil)

	s, err := New(Options{
		Themes:       []string{"default"},
		FetchHeaders: hg.fetch,
		FetchFooters: fg.fetch,
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Mount(context.Background()))

	snap := s.Snapshot()
	assert.Nil(t, snap.Header)
	assert.Nil(t, snap.Footer)
	assert.Empty(t, snap.Headers)
	assert.Empty(t, snap.Footers)
	assert.False(t, snap.HeadersLoaded)
	assert.False(t, snap.FootersLoaded)

	close(hg.release)
	close(fg.release)
	s.Wait()
}

func TestStore_FetchingVariant_SelectsFirst(t *testing.T) {
	headers := testVariants(t, model.KindHeader, "h1", "h2", "h3")
	footers := testVariants(t, model.KindFooter, "f1", "f2")

	s, err := New(Options{
		Themes:       []string{"default"},
		FetchHeaders: func(context.Context) ([]model.Variant, error) { return headers, nil },
		FetchFooters: func(context.Context) ([]model.Variant, error) { return footers, nil },
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Mount(context.Background()))
	s.Wait()

	snap := s.Snapshot()
	assert.Equal(t, headers, snap.Headers)
	assert.Equal(t, footers, snap.Footers)
	require.NotNil(t, snap.Header)
	require.NotNil(t, snap.Footer)
	assert.Equal(t, headers[0], *snap.Header)
	assert.Equal(t, footers[0], *snap.Footer)
	assert.True(t, snap.HeadersLoaded)
	assert.True(t, snap.FootersLoaded)
}

func TestStore_FetchingVariant_IndependentCompletion(t *testing.T) {
	hg := newGate(testVariants(t, model.KindHeader, "h1"), nil)
	fg := newGate(testVariants(t, model.KindFooter, "f1"), nil)

	s, err := New(Options{
		Themes:       []string{"default"},
		FetchHeaders: hg.fetch,
		FetchFooters: fg.fetch,
	})
	require.NoError(t, err)
	defer s.Close()

	events := s.Subscribe()
	require.NoError(t, s.Mount(context.Background()))

	// Footers resolve first; headers stay pending.
	close(fg.release)
	waitForEvent(t, events, ChangeTypeFootersLoaded)

	snap := s.Snapshot()
	assert.NotNil(t, snap.Footer)
	assert.Nil(t, snap.Header)

	close(hg.release)
	waitForEvent(t, events, ChangeTypeHeadersLoaded)
	assert.NotNil(t, s.Snapshot().Header)
}

func TestStore_FetchingVariant_EmptyResult(t *testing.T) {
	s, err := New(Options{
		Themes:       []string{"default"},
		FetchHeaders: func(context.Context) ([]model.Variant, error) { return nil, nil },
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Mount(context.Background()))
	s.Wait()

	snap := s.Snapshot()
	assert.True(t, snap.HeadersLoaded)
	assert.Empty(t, snap.Headers)
	assert.Nil(t, snap.Header)
}

func TestStore_FetchingVariant_Failure(t *testing.T) {
	footers := testVariants(t, model.KindFooter, "f1")

	s, err := New(Options{
		Themes:       []string{"default"},
		FetchHeaders: func(context.Context) ([]model.Variant, error) { return nil, errors.New("boom") },
		FetchFooters: func(context.Context) ([]model.Variant, error) { return footers, nil },
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Mount(context.Background()))
	s.Wait()

	snap := s.Snapshot()
	assert.Empty(t, snap.Headers)
	assert.Nil(t, snap.Header)
	assert.False(t, snap.HeadersLoaded)
	assert.Equal(t, "boom", snap.HeadersErr)

	assert.Equal(t, footers, snap.Footers)
	assert.Empty(t, snap.FootersErr)
}

func TestStore_LateResolutionAfterClose(t *testing.T) {
	hg := newGate(testVariants(t, model.KindHeader, "h1"), nil)

	s, err := New(Options{
		Themes:       []string{"default"},
		FetchHeaders: func(ctx context.Context) ([]model.Variant, error) {
			// Ignore cancellation to simulate a retrieval that resolves late.
			<-hg.release
			return hg.result, nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, s.Mount(context.Background()))
	require.NoError(t, s.Close())

	close(hg.release)
	s.Wait()

	snap := s.Snapshot()
	assert.Empty(t, snap.Headers)
	assert.Nil(t, snap.Header)
}

func TestStore_Mount(t *testing.T) {
	s, err := New(Options{Themes: []string{"default"}})
	require.NoError(t, err)

	var applied []string
	s.OnThemeChange(func(theme string) { applied = append(applied, theme) })

	require.NoError(t, s.Mount(context.Background()))
	assert.Equal(t, []string{"default"}, applied)

	assert.ErrorIs(t, s.Mount(context.Background()), ErrAlreadyMounted)

	require.NoError(t, s.Close())
	s2, err := New(Options{Themes: []string{"default"}})
	require.NoError(t, err)
	require.NoError(t, s2.Close())
	assert.ErrorIs(t, s2.Mount(context.Background()), ErrStoreClosed)
}

func TestStore_SetTheme(t *testing.T) {
	s, err := New(Options{Themes: []string{"default", "dark"}})
	require.NoError(t, err)
	defer s.Close()

	var applied []string
	s.OnThemeChange(func(theme string) { applied = append(applied, theme) })
	require.NoError(t, s.Mount(context.Background()))

	require.NoError(t, s.SetTheme("dark"))
	require.NoError(t, s.SetTheme("dark"))
	require.NoError(t, s.SetTheme("default"))

	assert.Equal(t, []string{"default", "dark", "default"}, applied)
	assert.Equal(t, "default", s.Theme())
}

func TestStore_SetTheme_UnknownName(t *testing.T) {
	s, err := New(Options{Themes: []string{"a", "b"}})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetTheme("not-listed"))
	snap := s.Snapshot()
	assert.Equal(t, "not-listed", snap.Theme)
	assert.Equal(t, []string{"a", "b"}, snap.Themes)
}

func TestStore_SetTheme_HooksSerialized(t *testing.T) {
	s, err := New(Options{Themes: []string{"default"}})
	require.NoError(t, err)
	defer s.Close()

	var (
		mu      sync.Mutex
		running int
		overlap bool
	)
	s.OnThemeChange(func(string) {
		mu.Lock()
		running++
		if running > 1 {
			overlap = true
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		running--
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.SetTheme(string(rune('a' + i)))
		}(i)
	}
	wg.Wait()

	assert.False(t, overlap, "theme hooks must not run concurrently")
}

func TestStore_SetTheme_EventAfterHooks(t *testing.T) {
	s, err := New(Options{InitialTheme: "a", Themes: []string{"a", "b"}})
	require.NoError(t, err)
	defer s.Close()

	entered := make(chan struct{})
	release := make(chan struct{})
	var applied string
	s.OnThemeChange(func(theme string) {
		if theme != "b" {
			return
		}
		close(entered)
		<-release
		applied = theme
	})

	events := s.Subscribe()
	done := make(chan error, 1)
	go func() { done <- s.SetTheme("b") }()

	<-entered
	select {
	case ev := <-events:
		t.Fatalf("received %s event while the hook was still running", ev.Type)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	ev := waitForEvent(t, events, ChangeTypeTheme)
	assert.Equal(t, "b", applied)
	assert.Equal(t, uint64(1), ev.Revision)
	require.NoError(t, <-done)
}

func TestStore_KindWithoutSourceIsLoaded(t *testing.T) {
	hg := newGate(testVariants(t, model.KindHeader, "h1"), nil)
	s, err := New(Options{Themes: []string{"default"}, FetchHeaders: hg.fetch})
	require.NoError(t, err)
	defer s.Close()

	snap := s.Snapshot()
	assert.False(t, snap.HeadersLoaded)
	assert.True(t, snap.FootersLoaded, "no footer source means an empty, settled set")
	assert.Empty(t, snap.Footers)
	assert.Nil(t, snap.Footer)

	require.NoError(t, s.Mount(context.Background()))
	close(hg.release)
	s.Wait()

	snap = s.Snapshot()
	assert.True(t, snap.HeadersLoaded)
	assert.True(t, snap.FootersLoaded)
	assert.Empty(t, snap.FootersErr)
}

func TestStore_SetHeaderFooter(t *testing.T) {
	headers := testVariants(t, model.KindHeader, "h1", "h2", "h3")
	footers := testVariants(t, model.KindFooter, "f1", "f2", "f3")

	s, err := New(Options{Themes: []string{"default"}, Headers: headers, Footers: footers})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetHeader(headers[1]))
	require.NoError(t, s.SetFooter(footers[2]))

	snap := s.Snapshot()
	assert.Equal(t, headers[1], *snap.Header)
	assert.Equal(t, footers[2], *snap.Footer)
}

func TestStore_SetHeader_OutOfSet(t *testing.T) {
	headers := testVariants(t, model.KindHeader, "h1")
	stranger := testVariants(t, model.KindHeader, "x")[0]

	t.Run("permissive", func(t *testing.T) {
		s, err := New(Options{Themes: []string{"default"}, Headers: headers})
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.SetHeader(stranger))
		assert.Equal(t, stranger, *s.Snapshot().Header)
	})

	t.Run("strict", func(t *testing.T) {
		s, err := New(Options{Themes: []string{"default"}, Headers: headers, StrictSelection: true})
		require.NoError(t, err)
		defer s.Close()

		assert.ErrorIs(t, s.SetHeader(stranger), ErrNotInChoiceSet)
		assert.Equal(t, headers[0], *s.Snapshot().Header)
	})
}

func TestStore_Subscribe(t *testing.T) {
	headers := testVariants(t, model.KindHeader, "h1", "h2")
	s, err := New(Options{Themes: []string{"default"}, Headers: headers})
	require.NoError(t, err)

	ch := s.Subscribe()

	require.NoError(t, s.SetTheme("dark"))
	ev := waitForEvent(t, ch, ChangeTypeTheme)
	assert.Equal(t, uint64(1), ev.Revision)

	require.NoError(t, s.SetHeader(headers[1]))
	ev = waitForEvent(t, ch, ChangeTypeHeader)
	assert.Equal(t, uint64(2), ev.Revision)

	s.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)

	ch2 := s.Subscribe()
	require.NoError(t, s.Close())
	_, ok = <-ch2
	assert.False(t, ok)
}

func TestStore_ClosedRejectsSetters(t *testing.T) {
	headers := testVariants(t, model.KindHeader, "h1")
	s, err := New(Options{Themes: []string{"default"}, Headers: headers})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.SetTheme("dark"), ErrStoreClosed)
	assert.ErrorIs(t, s.SetHeader(headers[0]), ErrStoreClosed)
	assert.ErrorIs(t, s.SetFooter(headers[0]), ErrStoreClosed)
}

func TestChangeType_String(t *testing.T) {
	assert.Equal(t, "theme", ChangeTypeTheme.String())
	assert.Equal(t, "load-failed", ChangeTypeLoadFailed.String())
	assert.Equal(t, "unknown", ChangeType(99).String())
}
