package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "rate:EUR:USD", []byte("1.08"), time.Minute))

	value, err := store.Get(ctx, "rate:EUR:USD")
	require.NoError(t, err)
	assert.Equal(t, []byte("1.08"), value)

	_, err = store.Get(ctx, "rate:EUR:GBP")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	require.NoError(t, store.Set(ctx, "vat:DE123456789:DE", []byte(`{"valid":true}`), 24*time.Hour))

	// Within TTL the entry is served.
	_, err := store.Get(ctx, "vat:DE123456789:DE")
	require.NoError(t, err)

	// One second past the TTL it is not reused.
	current = current.Add(24*time.Hour + time.Second)
	_, err = store.Get(ctx, "vat:DE123456789:DE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, store.Invalidate(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	require.NoError(t, store.Set(ctx, "old", []byte("v"), time.Minute))
	current = current.Add(2 * time.Minute)
	require.NoError(t, store.Set(ctx, "fresh", []byte("v"), time.Minute))

	store.Sweep()

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.NotContains(t, store.entries, "old")
	assert.Contains(t, store.entries, "fresh")
}

func TestLoaderSingleFlight(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(NewMemoryStore(), time.Minute)

	var fetches atomic.Int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) ([]byte, error) {
		fetches.Add(1)
		<-release
		return []byte("fetched"), nil
	}

	const callers = 20
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			value, _, err := loader.GetOrFetch(ctx, "same-key", fetch)
			require.NoError(t, err)
			results[idx] = value
		}(i)
	}

	// Let the goroutines pile up on the key, then release the fetch.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), fetches.Load(), "concurrent misses must share one fetch")
	for _, value := range results {
		assert.Equal(t, []byte("fetched"), value)
	}
}

func TestLoaderServesCachedWithoutFetch(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	loader := NewLoader(store, time.Minute)

	require.NoError(t, store.Set(ctx, "k", []byte("cached"), time.Minute))

	value, hit, err := loader.GetOrFetch(ctx, "k", func(ctx context.Context) ([]byte, error) {
		t.Fatal("fetch must not run on a cache hit")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("cached"), value)
}

func TestLoaderDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	loader := NewLoader(NewMemoryStore(), time.Minute)

	var fetches int
	fetch := func(ctx context.Context) ([]byte, error) {
		fetches++
		if fetches == 1 {
			return nil, assert.AnError
		}
		return []byte("ok"), nil
	}

	_, _, err := loader.GetOrFetch(ctx, "k", fetch)
	require.Error(t, err)

	value, hit, err := loader.GetOrFetch(ctx, "k", fetch)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []byte("ok"), value)
	assert.Equal(t, 2, fetches)
}
