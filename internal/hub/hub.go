// Package hub tracks which users currently hold a live connection.
package hub

import (
	"log/slog"
	"sync"
)

// Hub maps a username to its single live connection. The newest
// registration for a username wins.
type Hub struct {
	connections map[string]*Connection
	mu          sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*Connection),
	}
}

// Register makes conn the live connection for its username and returns the
// connection it replaced, if any.
func (h *Hub) Register(conn *Connection) *Connection {
	h.mu.Lock()
	prev := h.connections[conn.Username]
	h.connections[conn.Username] = conn
	h.mu.Unlock()

	if prev != nil && prev != conn {
		slog.Info("connection superseded", "user", conn.Username, "conn_id", conn.ID, "previous_conn_id", prev.ID)
		return prev
	}
	slog.Debug("connection registered", "user", conn.Username, "conn_id", conn.ID)
	return nil
}

// Unregister removes conn only if it is still the live connection for its
// username. It reports whether an entry was removed.
func (h *Hub) Unregister(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.connections[conn.Username]; ok && cur == conn {
		delete(h.connections, conn.Username)
		slog.Debug("connection unregistered", "user", conn.Username, "conn_id", conn.ID)
		return true
	}
	return false
}

// Lookup returns the live connection for username.
func (h *Hub) Lookup(username string) (*Connection, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.connections[username]
	return conn, ok
}

// Count returns the number of online users.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SendTo queues data for username's live connection, if there is one.
// It reports false when the user is offline.
func (h *Hub) SendTo(username string, data []byte) (bool, error) {
	conn, ok := h.Lookup(username)
	if !ok {
		return false, nil
	}
	return true, conn.Send(data)
}

// CloseAll closes every live connection with code and reason.
func (h *Hub) CloseAll(code int, reason string) int {
	h.mu.RLock()
	conns := make([]*Connection, 0, len(h.connections))
	for _, conn := range h.connections {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.CloseWithReason(code, reason)
	}
	return len(conns)
}
