//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "crosspay/pkg/platform/audit"
	"crosspay/pkg/testutil/containers"
)

func TestPostgresAuditStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t, "../../../../../migrations")
	store := New(pg.DB)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	sanctionsEvent := audit.Event{
		EventType:  audit.EventSanctionsScreening,
		EntityType: "customer",
		EntityID:   "cust-2",
		Rule:       "sanctions",
		Status:     audit.StatusFailed,
		CreatedAt:  base.Add(2 * time.Hour),
	}.WithRisk(100)

	events := []audit.Event{
		{
			EventType:  audit.EventKYCCheck,
			EntityType: "customer",
			EntityID:   "cust-1",
			Rule:       "kyc",
			Status:     audit.StatusPassed,
			Details:    map[string]any{"amount": float64(10000)},
			CreatedAt:  base.Add(time.Hour),
		},
		sanctionsEvent,
		{
			EventType:  audit.EventPaymentProcessed,
			EntityType: "payment",
			EntityID:   "tx-1",
			Rule:       "pipeline",
			Status:     audit.StatusPassed,
			CreatedAt:  base.Add(30 * 24 * time.Hour),
		},
	}
	for _, event := range events {
		require.NoError(t, store.Append(ctx, event))
	}

	t.Run("list by period excludes events outside the window", func(t *testing.T) {
		listed, err := store.ListByPeriod(ctx, base, base.Add(24*time.Hour))
		require.NoError(t, err)
		require.Len(t, listed, 2)
		assert.Equal(t, audit.EventKYCCheck, listed[0].EventType)
		assert.Equal(t, map[string]any{"amount": float64(10000)}, listed[0].Details)
	})

	t.Run("flagged filters by risk score", func(t *testing.T) {
		flagged, err := store.ListFlagged(ctx, base, base.Add(24*time.Hour), 75)
		require.NoError(t, err)
		require.Len(t, flagged, 1)
		assert.Equal(t, "cust-2", flagged[0].EntityID)
		require.NotNil(t, flagged[0].RiskScore)
		assert.Equal(t, 100, *flagged[0].RiskScore)
	})

	t.Run("append mirrors into the outbox", func(t *testing.T) {
		rows, err := store.PendingOutbox(ctx, 10)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		require.NoError(t, store.MarkPublished(ctx, []uuid.UUID{rows[0].ID, rows[1].ID}))

		remaining, err := store.PendingOutbox(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}
