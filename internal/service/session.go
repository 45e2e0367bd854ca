// Package service contains the application services wiring ports together:
// session CRUD, the generator gateway, the message orchestrator, and the
// dispatch supervisor.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Strob0t/AgentRelay/internal/domain/session"
	"github.com/Strob0t/AgentRelay/internal/port/cache"
	"github.com/Strob0t/AgentRelay/internal/port/database"
)

// SessionService manages chat sessions and their message history.
type SessionService struct {
	db    database.Store
	cache cache.Cache // optional; nil disables the read-through path
	ttl   time.Duration
	log   *slog.Logger
}

// NewSessionService creates a SessionService. cache may be nil.
func NewSessionService(db database.Store, c cache.Cache, ttl time.Duration, log *slog.Logger) *SessionService {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SessionService{db: db, cache: c, ttl: ttl, log: log}
}

// Create validates the name and creates a new active session.
func (s *SessionService) Create(ctx context.Context, req session.CreateRequest) (*session.Session, error) {
	if err := session.ValidateName(req.Name); err != nil {
		return nil, err
	}
	sess, err := s.db.CreateSession(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.log.Info("session created", "session_id", sess.ID, "name", sess.Name)
	return sess, nil
}

// Get returns a session with its messages and message count.
func (s *SessionService) Get(ctx context.Context, id string) (*session.Detail, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, err
	}
	sess, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.db.ListMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return &session.Detail{
		Session:      *sess,
		MessageCount: len(msgs),
		Messages:     msgs,
	}, nil
}

// List returns all sessions, newest first.
func (s *SessionService) List(ctx context.Context) ([]session.Session, error) {
	return s.db.ListSessions(ctx)
}

// UpdateStatus transitions a session's lifecycle status.
func (s *SessionService) UpdateStatus(ctx context.Context, id string, status session.Status) error {
	if err := session.ValidateID(id); err != nil {
		return err
	}
	if err := s.db.UpdateSessionStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete removes a session; messages and tool executions cascade.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if err := session.ValidateID(id); err != nil {
		return err
	}
	if err := s.db.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.log.Info("session deleted", "session_id", id)
	return nil
}

// Exists verifies the ID refers to a stored session.
func (s *SessionService) Exists(ctx context.Context, id string) error {
	if err := session.ValidateID(id); err != nil {
		return err
	}
	_, err := s.getSession(ctx, id)
	return err
}

// ListMessages returns a session's messages oldest-first, verifying the
// session exists first.
func (s *SessionService) ListMessages(ctx context.Context, id string) ([]session.Message, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, err
	}
	if _, err := s.getSession(ctx, id); err != nil {
		return nil, err
	}
	return s.db.ListMessages(ctx, id)
}

// getSession reads a session through the cache when one is configured.
func (s *SessionService) getSession(ctx context.Context, id string) (*session.Session, error) {
	key := cacheKey(id)
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var sess session.Session
			if err := json.Unmarshal(data, &sess); err == nil {
				return &sess, nil
			}
			// Corrupt entry: drop it and fall through to the store.
			_ = s.cache.Delete(ctx, key)
		}
	}

	sess, err := s.db.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(sess); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				s.log.Debug("session cache set failed", "session_id", id, "error", err)
			}
		}
	}
	return sess, nil
}

func (s *SessionService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.Debug("session cache invalidation failed", "session_id", id, "error", err)
	}
}

func cacheKey(id string) string { return "session:" + id }
