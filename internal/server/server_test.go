package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/store"
	"github.com/jmylchreest/themekit/internal/stylesheet"
	"github.com/jmylchreest/themekit/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *store.Store
	doc     *stylesheet.Document
	server  *Server
	http    *httptest.Server
	headers []model.Variant
	footers []model.Variant
}

func newVariants(t *testing.T, kind model.Kind, markups ...string) []model.Variant {
	t.Helper()
	out := make([]model.Variant, 0, len(markups))
	for _, m := range markups {
		v, err := model.NewVariant(kind, "v", m)
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()

	headers := newVariants(t, model.KindHeader, "<header>first header</header>", "<header>second header</header>")
	footers := newVariants(t, model.KindFooter, "<footer>only footer</footer>")

	s, err := store.New(store.Options{
		Themes:          []string{"default", "dark", "solarized"},
		Headers:         headers,
		Footers:         footers,
		StrictSelection: strict,
	})
	require.NoError(t, err)

	doc := stylesheet.NewDocument()
	stylesheet.NewSwitcher("", "/themes/", nil).Bind(s, doc)
	require.NoError(t, s.Mount(context.Background()))

	srv := New(Options{Store: s, Document: doc, Catalog: theme.NewCatalog("", nil)})
	ts := httptest.NewServer(srv.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		ts.Close()
		s.Close()
	})

	return &fixture{store: s, doc: doc, server: srv, http: ts, headers: headers, footers: footers}
}

// noRedirect returns a client that reports redirects instead of following them.
func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestServer_Page(t *testing.T) {
	f := newFixture(t, false)

	status, body := getBody(t, f.http.URL+"/")
	require.Equal(t, http.StatusOK, status)

	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, `<link rel="stylesheet" id="theme-stylesheet" href="/themes/default.css"/>`)
	assert.Contains(t, body, "<header>first header</header>")
	assert.Contains(t, body, "<footer>only footer</footer>")
	assert.Contains(t, body, "<h3>Select Theme</h3>")
	assert.Contains(t, body, "<h3>Select Header</h3>")
	assert.Contains(t, body, "<h3>Select Footer</h3>")
	assert.Contains(t, body, `<form method="post" action="/api/header">`)
	assert.Less(t, strings.Index(body, "first header"), strings.Index(body, "Select Theme"))
	assert.Less(t, strings.Index(body, "Select Footer"), strings.Index(body, "only footer"))
}

func TestServer_PostThemeSwitchesStylesheet(t *testing.T) {
	f := newFixture(t, false)

	resp, snap := postJSON(t, f.http.URL+"/api/theme", `{"value":"dark"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "dark", snap["theme"])

	_, body := getBody(t, f.http.URL+"/")
	assert.Contains(t, body, `href="/themes/dark.css"`)
	assert.NotContains(t, body, `href="/themes/default.css"`)
	assert.Equal(t, 1, strings.Count(body, `id="theme-stylesheet"`))
	assert.Equal(t, []string{"/themes/dark.css"}, f.doc.LinksByID(stylesheet.DefaultLinkID))
}

func TestServer_PostFormRedirects(t *testing.T) {
	f := newFixture(t, false)

	resp, err := noRedirect().PostForm(f.http.URL+"/api/header", url.Values{"header": {"1"}})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	snap := f.store.Snapshot()
	require.NotNil(t, snap.Header)
	assert.Equal(t, f.headers[1].ID, snap.Header.ID)
}

func TestServer_PostFormValueField(t *testing.T) {
	f := newFixture(t, false)

	resp, err := noRedirect().PostForm(f.http.URL+"/api/theme", url.Values{"value": {"solarized"}})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "solarized", f.store.Theme())
}

func TestServer_PostErrors(t *testing.T) {
	f := newFixture(t, false)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"header out of range", "/api/header", `{"value":"5"}`, http.StatusBadRequest},
		{"footer not a number", "/api/footer", `{"value":"first"}`, http.StatusBadRequest},
		{"missing value", "/api/theme", `{}`, http.StatusBadRequest},
		{"malformed body", "/api/theme", `{"value":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, decoded := postJSON(t, f.http.URL+tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decoded["error"])
		})
	}

	resp, err := http.Post(f.http.URL+"/api/sidebar", "application/json", strings.NewReader(`{"value":"0"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_PostAfterClose(t *testing.T) {
	f := newFixture(t, false)
	f.store.Close()

	resp, decoded := postJSON(t, f.http.URL+"/api/theme", `{"value":"dark"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, decoded["error"], "closed")
}

func TestServer_State(t *testing.T) {
	f := newFixture(t, false)

	status, body := getBody(t, f.http.URL+"/api/state")
	require.Equal(t, http.StatusOK, status)

	var snap model.Snapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	assert.Equal(t, "default", snap.Theme)
	assert.Len(t, snap.Headers, 2)
	assert.True(t, snap.HeadersLoaded)
	require.NotNil(t, snap.Footer)
	assert.Equal(t, f.footers[0].ID, snap.Footer.ID)
}

func TestServer_Controls(t *testing.T) {
	f := newFixture(t, false)

	status, body := getBody(t, f.http.URL+"/api/controls")
	require.Equal(t, http.StatusOK, status)

	var widgets []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &widgets))
	require.Len(t, widgets, 3)
	assert.Equal(t, "theme", widgets[0]["name"])
	assert.Equal(t, "Select Header", widgets[1]["title"])
	assert.Equal(t, "0", widgets[2]["selected"])
}

func TestServer_ThemeCSS(t *testing.T) {
	f := newFixture(t, false)

	resp, err := http.Get(f.http.URL + "/themes/dark.css")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "--tk-bg: #0d1117")

	for _, path := range []string{"/themes/missing.css", "/themes/dark", "/themes/_base.css"} {
		status, _ := getBody(t, f.http.URL+path)
		assert.Equal(t, http.StatusNotFound, status, path)
	}
}

func TestServer_Health(t *testing.T) {
	f := newFixture(t, false)

	status, body := getBody(t, f.http.URL+"/api/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestServer_StrictSelectionAcceptsOfferedOptions(t *testing.T) {
	// Selectors only offer members of the set, so strict mode accepts them.
	f := newFixture(t, true)

	resp, _ := postJSON(t, f.http.URL+"/api/header", `{"value":"1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(store.ErrNotInChoiceSet))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(store.ErrStoreClosed))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}

type wsMessage struct {
	Type     string         `json:"type"`
	Theme    string         `json:"theme"`
	Snapshot model.Snapshot `json:"snapshot"`
}

func dialWS(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWS(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServer_WebsocketPushesState(t *testing.T) {
	f := newFixture(t, false)
	conn := dialWS(t, f)

	initial := readWS(t, conn)
	assert.Equal(t, "state", initial.Type)
	assert.Equal(t, "default", initial.Snapshot.Theme)

	require.Eventually(t, func() bool { return f.server.Hub().Len() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, f.store.SetTheme("dark"))

	msg := readWS(t, conn)
	assert.Equal(t, "state", msg.Type)
	assert.Equal(t, "dark", msg.Snapshot.Theme)
	assert.Greater(t, msg.Snapshot.Revision, initial.Snapshot.Revision)
}

func TestServer_WebsocketStylesheetNotice(t *testing.T) {
	f := newFixture(t, false)
	conn := dialWS(t, f)
	readWS(t, conn)

	require.Eventually(t, func() bool { return f.server.Hub().Len() == 1 }, time.Second, 10*time.Millisecond)
	f.server.NotifyStylesheet("ocean")

	msg := readWS(t, conn)
	assert.Equal(t, "stylesheet", msg.Type)
	assert.Equal(t, "ocean", msg.Theme)
}

func TestHub_RemovesOnDisconnect(t *testing.T) {
	f := newFixture(t, false)
	conn := dialWS(t, f)
	readWS(t, conn)

	require.Eventually(t, func() bool { return f.server.Hub().Len() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return f.server.Hub().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
