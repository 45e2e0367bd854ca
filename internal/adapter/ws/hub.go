// Package ws implements the WebSocket adapter for real-time client
// communication. The Hub tracks live connections per session and fans
// events out to every connection attached to a session.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Strob0t/AgentRelay/internal/domain/event"
	"github.com/Strob0t/AgentRelay/internal/port/broadcast"
)

// sender is the write end of one client connection. wsConn implements it
// over a real WebSocket; tests substitute fakes.
type sender interface {
	// Send writes one serialized envelope to the client.
	Send(ctx context.Context, data []byte) error
	// Close tears the connection down after a send failure or detach.
	Close()
}

// Hub manages active connections keyed by session ID.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[sender]struct{}
}

// Compile-time check that Hub satisfies the broadcast port.
var _ broadcast.Broadcaster = (*Hub)(nil)

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[sender]struct{}),
	}
}

// attach registers a connection under a session key. Attaching a
// connection that is already registered is a no-op.
func (h *Hub) attach(c sender, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[sessionID]
	if !ok {
		set = make(map[sender]struct{})
		h.sessions[sessionID] = set
	}
	set[c] = struct{}{}
}

// detach removes a connection from a session's set. Detaching a
// connection that is not registered is a safe no-op. When the set becomes
// empty the session key is dropped so the map stays bounded.
func (h *Hub) detach(c sender, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.sessions, sessionID)
	}
}

// marshalEnvelope serializes a typed payload into the wire envelope.
func marshalEnvelope(eventType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(event.Envelope{Type: eventType, Data: data})
}

// BroadcastToSession marshals a typed event and delivers it to every
// connection attached to the session. A failed send is logged and that
// connection is detached; delivery to the remaining connections continues.
// No attached connections is a silent no-op.
func (h *Hub) BroadcastToSession(ctx context.Context, sessionID, eventType string, payload any) {
	env, err := marshalEnvelope(eventType, payload)
	if err != nil {
		slog.Error("marshal ws event", "type", eventType, "error", err)
		return
	}

	// Snapshot under the read lock; sends happen outside it so one slow
	// connection cannot block attach/detach.
	h.mu.RLock()
	conns := make([]sender, 0, len(h.sessions[sessionID]))
	for c := range h.sessions[sessionID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.Send(ctx, env); err != nil {
			slog.Debug("ws send failed, pruning connection",
				"session_id", sessionID, "type", eventType, "error", err)
			h.detach(c, sessionID)
			c.Close()
		}
	}
}

// ConnectionCount returns the number of connections attached to a session.
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Sessions returns the IDs of all sessions with at least one connection.
func (h *Hub) Sessions() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	return ids
}
