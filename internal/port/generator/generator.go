// Package generator defines the response generation capability port.
package generator

import (
	"context"

	"github.com/Strob0t/AgentRelay/internal/domain/event"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
)

// Sink receives intermediate progress events during generation. It is
// invoked zero or more times, in generation order, before Generate
// returns. Implementations must treat Generate's return value as the
// authoritative final text regardless of what passed through the sink.
type Sink func(eventType string, payload any)

// Generator produces a response to a user message given the ordered
// conversation history (oldest-first, the new user text last).
type Generator interface {
	Generate(ctx context.Context, text string, history []session.Message, sink Sink) (string, error)

	// Available reports whether this variant can be selected at all.
	// A variant that was never provisioned (e.g. missing credential)
	// returns false and must not be invoked.
	Available() bool
}

// Progress is a convenience for emitting an agent_progress event through
// a sink, tolerating a nil sink.
func Progress(sink Sink, message, step string) {
	if sink == nil {
		return
	}
	sink(event.TypeAgentProgress, event.Progress{Message: message, Step: step})
}
