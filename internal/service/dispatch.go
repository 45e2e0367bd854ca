package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain/event"
	"github.com/Strob0t/AgentRelay/internal/port/broadcast"
	"github.com/Strob0t/AgentRelay/internal/port/messagequeue"
)

// Dispatcher hands accepted submissions to the orchestrator without
// blocking the HTTP request. With a queue configured, submissions travel
// through NATS and an in-binary subscriber; otherwise a supervised
// goroutine runs each one. Either way a failure ends at the session's
// error broadcast, never silently.
type Dispatcher struct {
	chat  *ChatService
	hub   broadcast.Broadcaster
	queue messagequeue.Queue // nil selects the in-process path
	log   *slog.Logger

	wg   sync.WaitGroup
	stop func()
}

// NewDispatcher creates a Dispatcher. queue may be nil.
func NewDispatcher(chat *ChatService, hub broadcast.Broadcaster, queue messagequeue.Queue, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{chat: chat, hub: hub, queue: queue, log: log}
}

// Start begins consuming queued submissions. A no-op without a queue.
func (d *Dispatcher) Start(ctx context.Context) error {
	if d.queue == nil {
		return nil
	}
	stop, err := d.queue.Subscribe(ctx, messagequeue.SubjectChatProcess, d.handleQueued)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", messagequeue.SubjectChatProcess, err)
	}
	d.stop = stop
	d.log.Info("dispatch consuming from queue", "subject", messagequeue.SubjectChatProcess)
	return nil
}

// Submit enqueues processing of one user message and returns immediately.
// Processing runs detached from the caller's context so an early HTTP
// disconnect cannot cancel work already accepted.
func (d *Dispatcher) Submit(ctx context.Context, sessionID, content string) error {
	if d.queue != nil {
		data, err := json.Marshal(messagequeue.ChatProcessPayload{
			SessionID: sessionID,
			Content:   content,
		})
		if err != nil {
			return fmt.Errorf("marshal submission: %w", err)
		}
		return d.queue.Publish(ctx, messagequeue.SubjectChatProcess, data)
	}

	d.wg.Add(1)
	go d.run(context.WithoutCancel(ctx), sessionID, content)
	return nil
}

// run executes one submission under panic supervision.
func (d *Dispatcher) run(ctx context.Context, sessionID, content string) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("message processing panicked", "session_id", sessionID, "panic", r)
			d.hub.BroadcastToSession(ctx, sessionID, event.TypeError, event.Error{
				Message: "Internal error while processing your message",
			})
		}
	}()

	// Errors are already broadcast and logged by the orchestrator.
	_ = d.chat.ProcessMessage(ctx, sessionID, content)
}

// handleQueued processes one submission delivered by the queue. The error
// return lets the queue Nak for redelivery.
func (d *Dispatcher) handleQueued(ctx context.Context, _ string, data []byte) error {
	var p messagequeue.ChatProcessPayload
	if err := json.Unmarshal(data, &p); err != nil {
		// Malformed payloads can never succeed; drop instead of redeliver.
		d.log.Error("dropping malformed submission", "error", err)
		return nil
	}
	return d.chat.ProcessMessage(ctx, p.SessionID, p.Content)
}

// Shutdown stops queue consumption and waits for in-flight submissions,
// bounded by the context deadline.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	if d.stop != nil {
		d.stop()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("dispatch drain: %w", ctx.Err())
	case <-time.After(30 * time.Second):
		return fmt.Errorf("dispatch drain: timed out")
	}
}
