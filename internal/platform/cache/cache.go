// Package cache provides the process-wide TTL caches used by the
// converter, tax engine, and compliance monitor. Entries are immutable
// for their lifetime; eviction is TTL-based only.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound signals a cache miss (or an expired entry).
var ErrNotFound = errors.New("cache: entry not found")

// Store is the minimal cache contract. Implementations must be safe for
// concurrent use. Values are pre-encoded bytes so backends stay dumb.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}
