//go:build integration

package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspay/pkg/testutil/containers"
)

func TestPostgresConsentStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t, "../../migrations")
	store := NewPostgresConsentStore(pg.DB)
	ctx := context.Background()

	granted := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("save and list", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, ConsentRecord{
			CustomerID: "cust-1",
			Purpose:    PurposePaymentProcessing,
			Granted:    true,
			GrantedAt:  granted,
		}))
		require.NoError(t, store.Save(ctx, ConsentRecord{
			CustomerID: "cust-1",
			Purpose:    PurposeMarketing,
			Granted:    true,
			GrantedAt:  granted.Add(time.Hour),
		}))

		records, err := store.ListByCustomer(ctx, "cust-1")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, PurposePaymentProcessing, records[0].Purpose)
		assert.Equal(t, PurposeMarketing, records[1].Purpose)
		assert.Nil(t, records[0].RevokedAt)
	})

	t.Run("revoke stamps only the matching active grant", func(t *testing.T) {
		revokedAt := granted.Add(48 * time.Hour)
		require.NoError(t, store.Revoke(ctx, "cust-1", PurposeMarketing, revokedAt))

		records, err := store.ListByCustomer(ctx, "cust-1")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Nil(t, records[0].RevokedAt)
		require.NotNil(t, records[1].RevokedAt)
		assert.True(t, revokedAt.Equal(*records[1].RevokedAt))
		assert.False(t, records[1].Active(revokedAt.Add(time.Hour)))
	})

	t.Run("unknown customer lists empty", func(t *testing.T) {
		records, err := store.ListByCustomer(ctx, "nobody")
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
