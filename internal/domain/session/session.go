// Package session defines the chat session and message domain types.
package session

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ToolStatus is the lifecycle state of a tool execution.
type ToolStatus string

const (
	ToolRunning   ToolStatus = "running"
	ToolCompleted ToolStatus = "completed"
	ToolError     ToolStatus = "error"
)

// Session is a named chat thread with lifecycle status.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single turn within a session. User messages are immutable
// once written; assistant messages are created empty and updated exactly
// once when generation completes or fails.
type Message struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Role      Role            `json:"role"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToolExecution records one tool invocation made while producing a message.
type ToolExecution struct {
	ID            string          `json:"id"`
	MessageID     string          `json:"message_id"`
	ToolName      string          `json:"tool_name"`
	ToolInput     json.RawMessage `json:"tool_input"`
	ToolOutput    json.RawMessage `json:"tool_output,omitempty"`
	ExecutionTime float64         `json:"execution_time,omitempty"`
	Status        ToolStatus      `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// CreateRequest is the request body for creating a new session.
type CreateRequest struct {
	Name string `json:"name"`
}

// SendMessageRequest is the request body for sending a message.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Detail is a session together with its messages, for the detail endpoint.
type Detail struct {
	Session
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages"`
}
