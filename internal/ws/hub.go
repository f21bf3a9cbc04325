package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub manages active WebSocket connections keyed by nickname and delivers
// payloads to all connections of a user. A user may hold several
// connections at once.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Register adds a connection for the given user.
func (h *Hub) Register(nickname string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[nickname] == nil {
		h.conns[nickname] = make(map[*websocket.Conn]struct{})
	}
	h.conns[nickname][conn] = struct{}{}
}

// Unregister removes a connection for the given user.
func (h *Hub) Unregister(nickname string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.conns[nickname]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.conns, nickname)
		}
	}
}

// SendToUser writes the payload to every active connection of the user.
// A user with no connections is a no-op, not an error. Failed connections
// are closed; the last write error is returned.
func (h *Hub) SendToUser(nickname string, payload any) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var lastErr error
	for conn := range h.conns[nickname] {
		if err := conn.WriteJSON(payload); err != nil {
			conn.Close()
			// actual removal happens on the reader's Unregister
			lastErr = err
		}
	}
	return lastErr
}

// BroadcastAll sends the payload to every connected user.
func (h *Hub) BroadcastAll(payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.conns {
		for conn := range conns {
			if err := conn.WriteJSON(payload); err != nil {
				conn.Close()
			}
		}
	}
}
