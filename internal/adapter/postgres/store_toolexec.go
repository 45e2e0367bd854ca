package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/AgentRelay/internal/domain/session"
)

func (s *Store) CreateToolExecution(ctx context.Context, te *session.ToolExecution) (*session.ToolExecution, error) {
	input := te.ToolInput
	if len(input) == 0 {
		input = []byte(`{}`)
	}

	var created session.ToolExecution
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tool_executions (message_id, tool_name, tool_input, tool_output, execution_time, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, message_id, tool_name, tool_input, tool_output, execution_time, status, created_at, completed_at`,
		te.MessageID, te.ToolName, input, te.ToolOutput, te.ExecutionTime, te.Status,
	).Scan(&created.ID, &created.MessageID, &created.ToolName, &created.ToolInput,
		&created.ToolOutput, &created.ExecutionTime, &created.Status, &created.CreatedAt, &created.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("create tool execution: %w", err)
	}
	return &created, nil
}

func (s *Store) ListToolExecutions(ctx context.Context, messageID string) ([]session.ToolExecution, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, message_id, tool_name, tool_input, tool_output, execution_time, status, created_at, completed_at
		 FROM tool_executions WHERE message_id = $1 ORDER BY created_at ASC`,
		messageID)
	if err != nil {
		return nil, fmt.Errorf("list tool executions: %w", err)
	}
	defer rows.Close()

	var result []session.ToolExecution
	for rows.Next() {
		var te session.ToolExecution
		if err := rows.Scan(&te.ID, &te.MessageID, &te.ToolName, &te.ToolInput,
			&te.ToolOutput, &te.ExecutionTime, &te.Status, &te.CreatedAt, &te.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan tool execution: %w", err)
		}
		result = append(result, te)
	}
	return result, rows.Err()
}
