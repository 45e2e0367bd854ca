package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/port/database"
	"github.com/Strob0t/AgentRelay/internal/port/generator"
)

const testSessionID = "11111111-1111-1111-1111-111111111111"

// mockStore is an in-memory database.Store recording every mutation in an
// operation log shared with the recording broadcaster, so tests can assert
// persistence-before-broadcast ordering.
type mockStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
	messages []*session.Message
	nextID   int

	ops *opLog

	failCreateMessage bool
	failUpdateContent bool
}

var _ database.Store = (*mockStore)(nil)

func newMockStore(ops *opLog) *mockStore {
	return &mockStore{sessions: map[string]*session.Session{}, ops: ops}
}

func (m *mockStore) addSession(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.sessions[id] = &session.Session{
		ID: id, Name: name, Status: session.StatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
}

func (m *mockStore) CreateSession(_ context.Context, name string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s := &session.Session{
		ID:     fmt.Sprintf("00000000-0000-0000-0000-%012d", m.nextID),
		Name:   name,
		Status: session.StatusActive,
	}
	m.sessions[s.ID] = s
	m.ops.record("CreateSession")
	return s, nil
}

func (m *mockStore) GetSession(_ context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops.record("GetSession")
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockStore) ListSessions(_ context.Context) ([]session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]session.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockStore) UpdateSessionStatus(_ context.Context, id string, status session.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	m.ops.record("UpdateSessionStatus")
	return nil
}

func (m *mockStore) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sessions, id)
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.SessionID != id {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	m.ops.record("DeleteSession")
	return nil
}

func (m *mockStore) CreateMessage(_ context.Context, msg *session.Message) (*session.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateMessage {
		return nil, fmt.Errorf("injected create failure")
	}
	m.nextID++
	cp := *msg
	cp.ID = fmt.Sprintf("msg-%d", m.nextID)
	cp.CreatedAt = time.Now()
	m.messages = append(m.messages, &cp)
	m.ops.record("CreateMessage:" + string(cp.Role))
	out := cp
	return &out, nil
}

func (m *mockStore) UpdateMessageContent(_ context.Context, id, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdateContent {
		return fmt.Errorf("injected update failure")
	}
	for _, msg := range m.messages {
		if msg.ID == id {
			msg.Content = content
			m.ops.record("UpdateMessageContent")
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockStore) ListMessages(_ context.Context, sessionID string) ([]session.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []session.Message
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *mockStore) CountMessages(_ context.Context, sessionID string) (int, error) {
	msgs, _ := m.ListMessages(context.Background(), sessionID)
	return len(msgs), nil
}

func (m *mockStore) CreateToolExecution(_ context.Context, te *session.ToolExecution) (*session.ToolExecution, error) {
	cp := *te
	cp.ID = "te-1"
	return &cp, nil
}

func (m *mockStore) ListToolExecutions(_ context.Context, _ string) ([]session.ToolExecution, error) {
	return nil, nil
}

func (m *mockStore) messageByID(id string) *session.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.ID == id {
			cp := *msg
			return &cp
		}
	}
	return nil
}

// opLog is a shared, ordered record of store mutations and broadcasts.
type opLog struct {
	mu  sync.Mutex
	ops []string
}

func (l *opLog) record(op string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ops = append(l.ops, op)
}

func (l *opLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ops...)
}

// recordedEvent is one broadcast captured by the recorder.
type recordedEvent struct {
	SessionID string
	Type      string
	Payload   any
}

// recorder is a broadcast.Broadcaster capturing events in order.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
	ops    *opLog
}

func newRecorder(ops *opLog) *recorder { return &recorder{ops: ops} }

func (r *recorder) BroadcastToSession(_ context.Context, sessionID, eventType string, payload any) {
	r.mu.Lock()
	r.events = append(r.events, recordedEvent{SessionID: sessionID, Type: eventType, Payload: payload})
	r.mu.Unlock()
	if r.ops != nil {
		r.ops.record("Broadcast:" + eventType)
	}
}

func (r *recorder) all() []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedEvent(nil), r.events...)
}

// stubGen is a scriptable generator.
type stubGen struct {
	available bool
	response  string
	err       error
	chunks    []string

	mu      sync.Mutex
	calls   int
	gotText string
	gotHist []session.Message
}

var _ generator.Generator = (*stubGen)(nil)

func (g *stubGen) Available() bool { return g.available }

func (g *stubGen) Generate(_ context.Context, text string, history []session.Message, sink generator.Sink) (string, error) {
	g.mu.Lock()
	g.calls++
	g.gotText = text
	g.gotHist = append([]session.Message(nil), history...)
	g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	for _, c := range g.chunks {
		generator.Progress(sink, c, "streaming")
	}
	return g.response, nil
}

func (g *stubGen) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// memCache is a trivial cache.Cache for read-through tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}
