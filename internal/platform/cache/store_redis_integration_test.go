//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspay/pkg/testutil/containers"
)

func TestRedisStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	store := NewRedisStore(rc.Client, "test")
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "rate:USD:EUR", []byte(`{"rate":0.92}`), time.Minute))

		value, err := store.Get(ctx, "rate:USD:EUR")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"rate":0.92}`), value)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "rate:missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "short", []byte("v"), 50*time.Millisecond))
		time.Sleep(100 * time.Millisecond)

		_, err := store.Get(ctx, "short")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("invalidate", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "vat:DE123", []byte("valid"), time.Minute))
		require.NoError(t, store.Invalidate(ctx, "vat:DE123"))

		_, err := store.Get(ctx, "vat:DE123")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("prefixes isolate namespaces", func(t *testing.T) {
		other := NewRedisStore(rc.Client, "other")
		require.NoError(t, store.Set(ctx, "shared", []byte("a"), time.Minute))

		_, err := other.Get(ctx, "shared")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
