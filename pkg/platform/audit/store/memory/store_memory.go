// Package memory provides the in-memory audit store used in tests and
// single-instance development deployments.
package memory

import (
	"context"
	"sync"
	"time"

	audit "crosspay/pkg/platform/audit"
)

// Store keeps events in an append-only slice.
type Store struct {
	mu     sync.RWMutex
	events []audit.Event
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// Append adds an event. Events are copied in; callers cannot mutate them
// afterwards.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByPeriod returns events with CreatedAt in [start, end).
func (s *Store) ListByPeriod(ctx context.Context, start, end time.Time) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Event
	for _, event := range s.events {
		if !event.CreatedAt.Before(start) && event.CreatedAt.Before(end) {
			out = append(out, event)
		}
	}
	return out, nil
}

// ListFlagged returns events in the period with RiskScore >= minRisk.
func (s *Store) ListFlagged(ctx context.Context, start, end time.Time, minRisk int) ([]audit.Event, error) {
	events, err := s.ListByPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}

	var out []audit.Event
	for _, event := range events {
		if event.RiskScore != nil && *event.RiskScore >= minRisk {
			out = append(out, event)
		}
	}
	return out, nil
}

// Len reports how many events have been appended (tests).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
