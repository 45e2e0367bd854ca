// Package cache defines the key-value cache port backing the session
// read-through path.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized values under string keys with a per-entry TTL.
// Get reports a miss through the bool, not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
