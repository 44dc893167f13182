package tax

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound signals missing jurisdiction or rate reference data. The
// engine treats it as "no tax obligation", not as a failure.
var ErrNotFound = errors.New("tax: reference data not found")

// ReferenceStore serves jurisdiction and rate reference data. The data is
// loaded by an administrative process; this engine only reads it.
type ReferenceStore interface {
	FindJurisdiction(ctx context.Context, code string) (Jurisdiction, error)
	// FindRate returns the rate for (jurisdiction, category) with the
	// latest EffectiveFrom whose range contains at.
	FindRate(ctx context.Context, jurisdictionCode, category string, at time.Time) (Rate, error)
}

// MemoryReferenceStore is the in-process reference store. Reference data
// is immutable after Load, so reads take the read lock only.
type MemoryReferenceStore struct {
	mu            sync.RWMutex
	jurisdictions map[string]Jurisdiction
	rates         map[string][]Rate // key: jurisdiction|category
}

// NewMemoryReferenceStore creates an empty store.
func NewMemoryReferenceStore() *MemoryReferenceStore {
	return &MemoryReferenceStore{
		jurisdictions: make(map[string]Jurisdiction),
		rates:         make(map[string][]Rate),
	}
}

// Load replaces the reference data set.
func (s *MemoryReferenceStore) Load(jurisdictions []Jurisdiction, rates []Rate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jurisdictions = make(map[string]Jurisdiction, len(jurisdictions))
	for _, j := range jurisdictions {
		s.jurisdictions[j.Code] = j
	}
	s.rates = make(map[string][]Rate)
	for _, r := range rates {
		key := rateKey(r.JurisdictionCode, r.ProductCategory)
		s.rates[key] = append(s.rates[key], r)
	}
}

func (s *MemoryReferenceStore) FindJurisdiction(ctx context.Context, code string) (Jurisdiction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jurisdictions[code]
	if !ok {
		return Jurisdiction{}, ErrNotFound
	}
	return j, nil
}

func (s *MemoryReferenceStore) FindRate(ctx context.Context, jurisdictionCode, category string, at time.Time) (Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best  Rate
		found bool
	)
	for _, r := range s.rates[rateKey(jurisdictionCode, category)] {
		if !r.InRange(at) {
			continue
		}
		if !found || r.EffectiveFrom.After(best.EffectiveFrom) {
			best = r
			found = true
		}
	}
	if !found {
		return Rate{}, ErrNotFound
	}
	return best, nil
}

func rateKey(jurisdiction, category string) string {
	return jurisdiction + "|" + category
}
