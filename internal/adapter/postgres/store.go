package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/AgentRelay/internal/port/database"
)

// Store implements database.Store backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// Compile-time check that Store satisfies the port.
var _ database.Store = (*Store)(nil)

// NewStore creates a Store using the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
