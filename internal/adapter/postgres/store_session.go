package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
)

func (s *Store) CreateSession(ctx context.Context, name string) (*session.Session, error) {
	var created session.Session
	err := s.pool.QueryRow(ctx,
		`INSERT INTO sessions (name, status)
		 VALUES ($1, $2)
		 RETURNING id, name, status, created_at, updated_at`,
		name, session.StatusActive,
	).Scan(&created.ID, &created.Name, &created.Status, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &created, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*session.Session, error) {
	var sess session.Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, status, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		id,
	).Scan(&sess.ID, &sess.Name, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get session %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]session.Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, status, created_at, updated_at
		 FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var result []session.Session
	for rows.Next() {
		var sess session.Session
		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Status, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		result = append(result, sess)
	}
	return result, rows.Err()
}

func (s *Store) UpdateSessionStatus(ctx context.Context, id string, status session.Status) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("update session status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update session status %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete session %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
