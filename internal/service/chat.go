package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/AgentRelay/internal/adapter/otel"
	"github.com/Strob0t/AgentRelay/internal/domain/event"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/port/broadcast"
	"github.com/Strob0t/AgentRelay/internal/port/database"
	"github.com/Strob0t/AgentRelay/internal/port/generator"
)

// ChatService runs the message processing pipeline: persist the user turn,
// generate a response, persist it, and stream events to the session's
// WebSocket connections. Every persisted write lands before the event that
// announces it.
type ChatService struct {
	db      database.Store
	hub     broadcast.Broadcaster
	gen     generator.Generator
	metrics *otel.Metrics
	log     *slog.Logger
}

// NewChatService creates a ChatService. metrics may be nil.
func NewChatService(db database.Store, hub broadcast.Broadcaster, gen generator.Generator, metrics *otel.Metrics, log *slog.Logger) *ChatService {
	if log == nil {
		log = slog.Default()
	}
	return &ChatService{db: db, hub: hub, gen: gen, metrics: metrics, log: log}
}

// ProcessMessage runs one user submission through the pipeline. A missing
// session returns domain.ErrNotFound with zero writes. Failures after the
// user turn is persisted update the assistant row with an error string,
// broadcast a terminal error event, and return the error.
func (s *ChatService) ProcessMessage(ctx context.Context, sessionID, content string) error {
	if err := session.ValidateID(sessionID); err != nil {
		return err
	}
	if err := session.ValidateContent(content); err != nil {
		return err
	}

	// Existence check first: nothing is written for an unknown session.
	if _, err := s.db.GetSession(ctx, sessionID); err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.MessagesReceived.Add(ctx, 1)
	}

	// History snapshot before the new turn: the generator receives prior
	// turns oldest-first and the new text separately.
	history, err := s.db.ListMessages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	userMsg, err := s.db.CreateMessage(ctx, &session.Message{
		SessionID: sessionID,
		Role:      session.RoleUser,
		Content:   content,
	})
	if err != nil {
		return fmt.Errorf("store user message: %w", err)
	}

	// Placeholder assistant row, filled in exactly once below. Its ID
	// correlates the terminal event with the persisted message.
	assistantMsg, err := s.db.CreateMessage(ctx, &session.Message{
		SessionID: sessionID,
		Role:      session.RoleAssistant,
		Content:   "",
	})
	if err != nil {
		return s.fail(ctx, sessionID, "", fmt.Errorf("store assistant placeholder: %w", err))
	}

	s.hub.BroadcastToSession(ctx, sessionID, event.TypeAgentProgress, event.Progress{
		Message: "Processing your request...",
		Step:    "thinking",
	})

	sink := func(eventType string, payload any) {
		s.hub.BroadcastToSession(ctx, sessionID, eventType, payload)
		if s.metrics != nil {
			s.metrics.EventsBroadcast.Add(ctx, 1)
		}
	}

	start := time.Now()
	response, err := s.gen.Generate(ctx, content, history, sink)
	if s.metrics != nil {
		s.metrics.GenerationDuration.Record(ctx, time.Since(start).Seconds())
	}
	if err != nil {
		return s.fail(ctx, sessionID, assistantMsg.ID, fmt.Errorf("generate response: %w", err))
	}

	// Durability before broadcast: the assistant row is updated before the
	// terminal event announcing it goes out.
	if err := s.db.UpdateMessageContent(ctx, assistantMsg.ID, response); err != nil {
		return s.fail(ctx, sessionID, assistantMsg.ID, fmt.Errorf("store assistant response: %w", err))
	}

	s.hub.BroadcastToSession(ctx, sessionID, event.TypeAgentResponse, event.Response{
		Content:   response,
		MessageID: assistantMsg.ID,
	})

	if s.metrics != nil {
		s.metrics.MessagesCompleted.Add(ctx, 1)
	}
	s.log.Info("message processed",
		"session_id", sessionID,
		"user_message_id", userMsg.ID,
		"assistant_message_id", assistantMsg.ID,
		"duration", time.Since(start))
	return nil
}

// fail records the failure on the assistant row when one exists, emits the
// terminal error event, and returns the error for the supervisor.
func (s *ChatService) fail(ctx context.Context, sessionID, assistantID string, err error) error {
	s.log.Error("message processing failed", "session_id", sessionID, "error", err)

	if assistantID != "" {
		errText := fmt.Sprintf("Sorry, I encountered an error while processing your message: %v", err)
		if updateErr := s.db.UpdateMessageContent(ctx, assistantID, errText); updateErr != nil {
			s.log.Error("failed to record error on assistant message",
				"message_id", assistantID, "error", updateErr)
		}
	}

	s.hub.BroadcastToSession(ctx, sessionID, event.TypeError, event.Error{
		Message: fmt.Sprintf("Error processing message: %v", err),
	})

	if s.metrics != nil {
		s.metrics.MessagesFailed.Add(ctx, 1)
	}
	return err
}
