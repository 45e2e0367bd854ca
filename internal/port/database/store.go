// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/Strob0t/AgentRelay/internal/domain/session"
)

// Store is the port interface for database operations.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, name string) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	ListSessions(ctx context.Context) ([]session.Session, error)
	UpdateSessionStatus(ctx context.Context, id string, status session.Status) error
	// DeleteSession removes a session and cascades to its messages and
	// tool executions.
	DeleteSession(ctx context.Context, id string) error

	// Messages
	CreateMessage(ctx context.Context, m *session.Message) (*session.Message, error)
	UpdateMessageContent(ctx context.Context, id, content string) error
	// ListMessages returns the session's messages ordered oldest-first.
	ListMessages(ctx context.Context, sessionID string) ([]session.Message, error)
	CountMessages(ctx context.Context, sessionID string) (int, error)

	// Tool executions
	CreateToolExecution(ctx context.Context, te *session.ToolExecution) (*session.ToolExecution, error)
	ListToolExecutions(ctx context.Context, messageID string) ([]session.ToolExecution, error)
}
