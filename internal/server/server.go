// Package server serves the themed page, the selection API and live updates.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/selector"
	"github.com/jmylchreest/themekit/internal/store"
	"github.com/jmylchreest/themekit/internal/stylesheet"
	"github.com/jmylchreest/themekit/internal/theme"
)

// maxBodyBytes bounds selection request bodies.
const maxBodyBytes = 64 << 10

// Options configures a Server.
type Options struct {
	Store    *store.Store
	Document *stylesheet.Document
	Catalog  *theme.Catalog
	LinkID   string
	Logger   *slog.Logger
}

// Server handles HTTP and websocket requests against one store.
type Server struct {
	store    *store.Store
	doc      *stylesheet.Document
	catalog  *theme.Catalog
	linkID   string
	logger   *slog.Logger
	hub      *Hub
	upgrader websocket.Upgrader

	controls []selector.Control
	byName   map[string]selector.Control
}

// New creates a Server. Store, Document and Catalog are required.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	linkID := opts.LinkID
	if linkID == "" {
		linkID = stylesheet.DefaultLinkID
	}

	s := &Server{
		store:   opts.Store,
		doc:     opts.Document,
		catalog: opts.Catalog,
		linkID:  linkID,
		logger:  logger,
		hub:     NewHub(),
		controls: []selector.Control{
			selector.NewThemeSelector(opts.Store),
			selector.NewHeaderSelector(opts.Store),
			selector.NewFooterSelector(opts.Store),
		},
		byName: make(map[string]selector.Control),
	}
	for _, c := range s.controls {
		s.byName[c.Widget().Name] = c
	}
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/controls", s.handleControls)
	mux.HandleFunc("POST /api/{control}", s.handleChoose)
	mux.HandleFunc("GET /themes/{file}", s.handleThemeCSS)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return mux
}

// Run broadcasts store changes to websocket clients until ctx is done or the
// store is closed.
func (s *Server) Run(ctx context.Context) error {
	events := s.store.Subscribe()
	defer s.store.Unsubscribe(events)
	defer s.hub.CloseAll()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			s.logger.Debug("broadcasting store change", "type", event.Type, "revision", event.Revision, "clients", s.hub.Len())
			s.hub.Broadcast(stateMessage(s.store.Snapshot()))
		}
	}
}

// NotifyStylesheet tells clients that the CSS of the named theme changed.
// An empty name means any theme may have changed.
func (s *Server) NotifyStylesheet(name string) {
	s.hub.Broadcast(map[string]any{"type": "stylesheet", "theme": name})
}

func stateMessage(snap model.Snapshot) map[string]any {
	return map[string]any{"type": "state", "snapshot": snap}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := renderPage(w, s.doc, s.linkID, s.store.Snapshot(), s.controls); err != nil {
		s.logger.Warn("failed to render page", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	widgets := make([]selector.Widget, 0, len(s.controls))
	for _, c := range s.controls {
		widgets = append(widgets, c.Widget())
	}
	writeJSON(w, http.StatusOK, widgets)
}

type chooseRequest struct {
	Value *string `json:"value"`
}

func (s *Server) handleChoose(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("control")
	control, ok := s.byName[name]
	if !ok {
		http.NotFound(w, r)
		return
	}

	isJSON := isJSONRequest(r)
	value, err := readValue(w, r, name, isJSON)
	if err != nil {
		s.writeError(w, isJSON, http.StatusBadRequest, err)
		return
	}

	if err := control.Choose(value); err != nil {
		s.logger.Debug("selection rejected", "control", name, "value", value, "error", err)
		s.writeError(w, isJSON, statusFor(err), err)
		return
	}

	if !isJSON {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// readValue extracts the chosen value from a JSON body {"value": ...} or from
// the form field "value", falling back to the field named after the control.
func readValue(w http.ResponseWriter, r *http.Request, name string, isJSON bool) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isJSON {
		var req chooseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("invalid request body: %w", err)
		}
		if req.Value == nil {
			return "", errors.New("missing value")
		}
		return *req.Value, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", fmt.Errorf("invalid form: %w", err)
	}
	for _, field := range []string{"value", name} {
		if values, ok := r.PostForm[field]; ok && len(values) > 0 {
			return values[0], nil
		}
	}
	return "", errors.New("missing value")
}

func isJSONRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, selector.ErrInvalidOption), errors.Is(err, store.ErrNotInChoiceSet):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrStoreClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, isJSON bool, status int, err error) {
	if isJSON {
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	http.Error(w, err.Error(), status)
}

func (s *Server) handleThemeCSS(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	name, ok := strings.CutSuffix(file, ".css")
	if !ok {
		http.NotFound(w, r)
		return
	}

	css, err := s.catalog.CSS(name)
	if err != nil {
		if errors.Is(err, theme.ErrThemeNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Warn("failed to load theme", "theme", name, "error", err)
		http.Error(w, "failed to load theme", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = io.WriteString(w, css)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	s.hub.Add(conn)
	defer func() {
		s.hub.Remove(conn)
		_ = conn.Close()
	}()

	if err := s.hub.WriteJSON(conn, stateMessage(s.store.Snapshot())); err != nil {
		return
	}

	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write JSON response", "error", err)
	}
}
