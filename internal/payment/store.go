package payment

import (
	"context"
	"sync"

	dErrors "crosspay/pkg/domain-errors"
)

// RecordStore persists terminal transaction records. Append-only:
// corrections are new compensating records, never updates.
type RecordStore interface {
	Save(ctx context.Context, result Result) error
	FindByTransactionID(ctx context.Context, transactionID string) (Result, error)
}

// InMemoryRecordStore implements RecordStore for tests and development.
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string]Result
}

// NewInMemoryRecordStore creates an empty store.
func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{records: make(map[string]Result)}
}

func (s *InMemoryRecordStore) Save(_ context.Context, result Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[result.TransactionID]; exists {
		return dErrors.Newf(dErrors.CodeConflict, "transaction %s already recorded", result.TransactionID)
	}
	s.records[result.TransactionID] = result
	return nil
}

func (s *InMemoryRecordStore) FindByTransactionID(_ context.Context, transactionID string) (Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.records[transactionID]
	if !ok {
		return Result{}, dErrors.Newf(dErrors.CodeNotFound, "transaction %s not found", transactionID)
	}
	return result, nil
}

// Len reports how many records are stored. Test helper.
func (s *InMemoryRecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
