package tax

import (
	"context"
	"fmt"
	"sync"
)

// MemoryInvoiceStore keeps invoices in memory for tests and development.
type MemoryInvoiceStore struct {
	mu        sync.Mutex
	invoices  map[string]Invoice
	sequences map[string]int64
}

// NewMemoryInvoiceStore creates an empty store.
func NewMemoryInvoiceStore() *MemoryInvoiceStore {
	return &MemoryInvoiceStore{
		invoices:  make(map[string]Invoice),
		sequences: make(map[string]int64),
	}
}

func (s *MemoryInvoiceStore) NextSequence(ctx context.Context, year int, country string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d:%s", year, country)
	s.sequences[key]++
	return s.sequences[key], nil
}

func (s *MemoryInvoiceStore) Save(ctx context.Context, invoice Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invoices[invoice.Number]; exists {
		return fmt.Errorf("invoice %s already exists", invoice.Number)
	}
	s.invoices[invoice.Number] = invoice
	return nil
}

func (s *MemoryInvoiceStore) FindByNumber(ctx context.Context, number string) (Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.invoices[number]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	return invoice, nil
}
