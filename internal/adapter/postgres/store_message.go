package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/AgentRelay/internal/domain"
	"github.com/Strob0t/AgentRelay/internal/domain/session"
)

func (s *Store) CreateMessage(ctx context.Context, m *session.Message) (*session.Message, error) {
	metadata := m.Metadata
	if len(metadata) == 0 {
		metadata = []byte(`{}`)
	}

	var created session.Message
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (session_id, role, content, metadata)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, session_id, role, content, metadata, created_at`,
		m.SessionID, m.Role, m.Content, metadata,
	).Scan(&created.ID, &created.SessionID, &created.Role, &created.Content,
		&created.Metadata, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	// Touch the owning session so listings sort by recent activity.
	_, _ = s.pool.Exec(ctx, `UPDATE sessions SET updated_at = NOW() WHERE id = $1`, m.SessionID)
	return &created, nil
}

func (s *Store) UpdateMessageContent(ctx context.Context, id, content string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE messages SET content = $2 WHERE id = $1`,
		id, content)
	if err != nil {
		return fmt.Errorf("update message %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update message %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]session.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, session_id, role, content, metadata, created_at
		 FROM messages WHERE session_id = $1 ORDER BY created_at ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var result []session.Message
	for rows.Next() {
		var m session.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.Metadata, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *Store) CountMessages(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE session_id = $1`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}
