// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Drain gracefully drains all subscriptions before closing.
	Drain() error

	// Close shuts down the queue connection immediately.
	Close() error
}

// Subject constants for AgentRelay queue traffic.
const (
	// SubjectChatProcess carries submissions from the HTTP trigger to the
	// in-binary orchestration worker.
	SubjectChatProcess = "chat.message.process"
)

// ChatProcessPayload is the schema for chat.message.process messages.
type ChatProcessPayload struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}
