package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain/event"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/port/generator"
	"github.com/Strob0t/AgentRelay/internal/port/messagequeue"
	"github.com/Strob0t/AgentRelay/internal/service"
)

// fakeQueue is an in-memory messagequeue.Queue delivering published
// messages synchronously to the registered handler.
type fakeQueue struct {
	mu        sync.Mutex
	published [][]byte
	handler   messagequeue.Handler
}

func (q *fakeQueue) Publish(ctx context.Context, _ string, data []byte) error {
	q.mu.Lock()
	q.published = append(q.published, data)
	h := q.handler
	q.mu.Unlock()
	if h != nil {
		return h(ctx, messagequeue.SubjectChatProcess, data)
	}
	return nil
}

func (q *fakeQueue) Subscribe(_ context.Context, _ string, handler messagequeue.Handler) (func(), error) {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
	return func() {}, nil
}

func (q *fakeQueue) Drain() error { return nil }
func (q *fakeQueue) Close() error { return nil }

// waitForTerminal polls the recorder until a terminal event lands.
func waitForTerminal(t *testing.T, rec *recorder) recordedEvent {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		for _, e := range rec.all() {
			if e.Type == event.TypeAgentResponse || e.Type == event.TypeError {
				return e
			}
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for terminal event")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDispatchInProcessRunsToCompletion(t *testing.T) {
	chat, _, rec, _, _ := newChatFixture()
	d := service.NewDispatcher(chat, rec, nil, nil)

	if err := d.Submit(context.Background(), testSessionID, "hello"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	e := waitForTerminal(t, rec)
	if e.Type != event.TypeAgentResponse {
		t.Fatalf("expected agent_response, got %q", e.Type)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestDispatchSurvivesCancelledRequestContext(t *testing.T) {
	chat, _, rec, _, _ := newChatFixture()
	d := service.NewDispatcher(chat, rec, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Submit(ctx, testSessionID, "hello"); err != nil {
		t.Fatal(err)
	}
	cancel() // client disconnects right after the 202

	e := waitForTerminal(t, rec)
	if e.Type != event.TypeAgentResponse {
		t.Fatalf("accepted work must finish after caller cancel, got %q", e.Type)
	}
}

func TestDispatchFailureReachesErrorBroadcast(t *testing.T) {
	chat, store, rec, _, _ := newChatFixture()
	store.failUpdateContent = true
	d := service.NewDispatcher(chat, rec, nil, nil)

	if err := d.Submit(context.Background(), testSessionID, "hello"); err != nil {
		t.Fatal(err)
	}

	e := waitForTerminal(t, rec)
	if e.Type != event.TypeError {
		t.Fatalf("expected error event, got %q", e.Type)
	}
}

// panicGen blows up mid-generation to exercise the supervisor.
type panicGen struct{}

func (panicGen) Available() bool { return true }
func (panicGen) Generate(context.Context, string, []session.Message, generator.Sink) (string, error) {
	panic("generation bug")
}

func TestDispatchRecoversPanicAndBroadcastsError(t *testing.T) {
	ops := &opLog{}
	store := newMockStore(ops)
	store.addSession(testSessionID, "test")
	rec := newRecorder(ops)
	chat := service.NewChatService(store, rec, panicGen{}, nil, nil)
	d := service.NewDispatcher(chat, rec, nil, nil)

	if err := d.Submit(context.Background(), testSessionID, "hello"); err != nil {
		t.Fatal(err)
	}

	e := waitForTerminal(t, rec)
	if e.Type != event.TypeError {
		t.Fatalf("panic must surface as error event, got %q", e.Type)
	}
}

func TestDispatchQueuePathPublishesAndProcesses(t *testing.T) {
	chat, store, rec, _, _ := newChatFixture()
	q := &fakeQueue{}
	d := service.NewDispatcher(chat, rec, q, nil)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Submit(context.Background(), testSessionID, "hello"); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	q.mu.Lock()
	published := len(q.published)
	q.mu.Unlock()
	if published != 1 {
		t.Fatalf("expected 1 published message, got %d", published)
	}

	var p messagequeue.ChatProcessPayload
	if err := json.Unmarshal(q.published[0], &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.SessionID != testSessionID || p.Content != "hello" {
		t.Fatalf("unexpected payload %+v", p)
	}

	// The fake queue delivers synchronously, so processing is done.
	msgs, _ := store.ListMessages(context.Background(), testSessionID)
	if len(msgs) != 2 {
		t.Fatalf("expected processed conversation, got %d messages", len(msgs))
	}
}

func TestDispatchDropsMalformedQueuePayload(t *testing.T) {
	chat, _, rec, _, _ := newChatFixture()
	q := &fakeQueue{}
	d := service.NewDispatcher(chat, rec, q, nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	// A nil error keeps the queue from redelivering garbage forever.
	if err := q.handler(context.Background(), messagequeue.SubjectChatProcess, []byte("{not json")); err != nil {
		t.Fatalf("malformed payload must be dropped, got %v", err)
	}
}

func TestDispatchShutdownWaitsForInflight(t *testing.T) {
	chat, _, rec, _, _ := newChatFixture()
	d := service.NewDispatcher(chat, rec, nil, nil)

	for range 5 {
		if err := d.Submit(context.Background(), testSessionID, "hello"); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	terminals := 0
	for _, e := range rec.all() {
		if e.Type == event.TypeAgentResponse || e.Type == event.TypeError {
			terminals++
		}
	}
	if terminals != 5 {
		t.Fatalf("expected all 5 submissions finished before shutdown returned, got %d", terminals)
	}
}
