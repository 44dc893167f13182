package cache

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader wraps a Store with single-flight population: when several
// goroutines miss on the same key at once, only one invokes the fetch
// function and the rest share its result. This is what keeps a burst of
// payments for the same VAT number from racing duplicate registry calls.
type Loader struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
}

// NewLoader builds a Loader populating store entries with the given TTL.
func NewLoader(store Store, ttl time.Duration) *Loader {
	return &Loader{store: store, ttl: ttl}
}

// GetOrFetch returns the cached value for key, or runs fetch exactly once
// per concurrent group of callers and caches its result. Fetch errors are
// not cached; the next caller retries.
func (l *Loader) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) ([]byte, error)) ([]byte, bool, error) {
	if value, err := l.store.Get(ctx, key); err == nil {
		return value, true, nil
	} else if !errors.Is(err, ErrNotFound) {
		// A broken cache backend must not take the primary path down.
		// Fall through to the fetch.
		_ = err
	}

	value, err, _ := l.group.Do(key, func() (any, error) {
		fetched, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		_ = l.store.Set(ctx, key, fetched, l.ttl)
		return fetched, nil
	})
	if err != nil {
		return nil, false, err
	}
	return value.([]byte), false, nil
}

// Invalidate removes a key so the next read re-fetches.
func (l *Loader) Invalidate(ctx context.Context, key string) error {
	return l.store.Invalidate(ctx, key)
}
