// Package event defines the transient progress events pushed to live
// WebSocket connections. Events are never persisted; they exist only on
// the wire.
package event

import "encoding/json"

// Event type constants for the WebSocket envelope.
const (
	TypeConnection    = "connection"
	TypeAgentProgress = "agent_progress"
	TypeToolExecution = "tool_execution"
	TypeAgentResponse = "agent_response"
	TypeError         = "error"
	TypeClientMessage = "client_message"
)

// Envelope is the wire format for all WebSocket messages.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Progress carries an intermediate status update during generation.
type Progress struct {
	Message  string   `json:"message"`
	Step     string   `json:"step,omitempty"`
	Progress *float64 `json:"progress,omitempty"`
}

// ToolExecution carries the status of one tool invocation.
type ToolExecution struct {
	ToolName   string          `json:"tool_name"`
	ToolInput  json.RawMessage `json:"tool_input"`
	ToolOutput json.RawMessage `json:"tool_output,omitempty"`
	Status     string          `json:"status"`
}

// Response is the terminal event carrying the final assistant text and the
// persisted assistant message ID for correlation.
type Response struct {
	Content   string `json:"content"`
	MessageID string `json:"message_id"`
}

// Error is the terminal event emitted when generation or persistence fails.
type Error struct {
	Message string `json:"message"`
}

// Connected is pushed once when a client attaches to a session.
type Connected struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// ClientMessage echoes an inbound client frame back to the session.
type ClientMessage struct {
	Message string `json:"message"`
}
