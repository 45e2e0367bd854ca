// Package broadcast defines the port for pushing real-time events to the
// clients attached to a session.
package broadcast

import "context"

// Broadcaster fans a typed event out to every connection attached to a
// session. Delivery is best-effort: implementations must isolate and prune
// failing connections and must never return an error to the caller.
type Broadcaster interface {
	BroadcastToSession(ctx context.Context, sessionID, eventType string, payload any)
}
