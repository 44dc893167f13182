package audit

import (
	"context"
	"time"
)

// Store persists audit events. Append-only: implementations expose no
// update or delete operations.
type Store interface {
	Append(ctx context.Context, event Event) error
	// ListByPeriod returns events with CreatedAt in [start, end).
	ListByPeriod(ctx context.Context, start, end time.Time) ([]Event, error)
	// ListFlagged returns events in the period whose risk score is at or
	// above minRisk. Used by compliance reporting to surface suspicious
	// activity.
	ListFlagged(ctx context.Context, start, end time.Time, minRisk int) ([]Event, error)
}
