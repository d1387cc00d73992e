package server

import (
	"sync"

	"github.com/gorilla/websocket"
)

// client wraps a websocket connection with its own mutex for serialised writes.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub tracks websocket clients and broadcasts messages to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

// Add registers a connection.
func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = &client{conn: conn}
}

// Remove unregisters a connection. It does not close it.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// Len returns the number of registered connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends message to every client. Clients that fail the write are
// dropped and closed.
func (h *Hub) Broadcast(message any) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			h.Remove(c.conn)
			_ = c.conn.Close()
		}
	}
}

// WriteJSON writes message to a single connection, serialised with broadcasts.
func (h *Hub) WriteJSON(conn *websocket.Conn, message any) error {
	h.mu.RLock()
	c, ok := h.clients[conn]
	h.mu.RUnlock()

	if !ok {
		return conn.WriteJSON(message)
	}
	return c.writeJSON(message)
}

// CloseAll sends a close frame to and closes every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*websocket.Conn]*client)
	h.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		c.mu.Unlock()
		_ = c.conn.Close()
	}
}
