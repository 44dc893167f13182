package compliance

import (
	"context"
	"sync"
	"time"
)

// ConsentPurpose labels why data is processed. Purpose binding allows
// selective revocation without affecting other flows.
type ConsentPurpose string

const (
	PurposePaymentProcessing ConsentPurpose = "payment_processing"
	PurposeMarketing         ConsentPurpose = "marketing"
	PurposeAnalytics         ConsentPurpose = "analytics"
)

// exemptPurposes do not require stored consent: processing rests on a
// legal basis other than consent under GDPR article 6.
var exemptPurposes = map[string]bool{
	"contract performance": true,
	"fraud prevention":     true,
	"legal compliance":     true,
}

// IsExemptPurpose reports whether purpose has a non-consent legal basis.
func IsExemptPurpose(purpose string) bool {
	return exemptPurposes[purpose]
}

// ConsentRecord captures a customer's decision for a specific purpose.
type ConsentRecord struct {
	CustomerID string
	Purpose    ConsentPurpose
	Granted    bool
	GrantedAt  time.Time
	RevokedAt  *time.Time
}

// Active reports whether the record is an affirmative, unrevoked grant.
func (c ConsentRecord) Active(now time.Time) bool {
	if !c.Granted {
		return false
	}
	return c.RevokedAt == nil || now.Before(*c.RevokedAt)
}

// ConsentStore persists consent decisions.
type ConsentStore interface {
	Save(ctx context.Context, record ConsentRecord) error
	ListByCustomer(ctx context.Context, customerID string) ([]ConsentRecord, error)
	Revoke(ctx context.Context, customerID string, purpose ConsentPurpose, revokedAt time.Time) error
}

// InMemoryConsentStore implements ConsentStore with an in-process map.
type InMemoryConsentStore struct {
	mu       sync.RWMutex
	consents map[string][]ConsentRecord
}

// NewInMemoryConsentStore creates an empty store.
func NewInMemoryConsentStore() *InMemoryConsentStore {
	return &InMemoryConsentStore{consents: make(map[string][]ConsentRecord)}
}

func (s *InMemoryConsentStore) Save(_ context.Context, record ConsentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consents[record.CustomerID] = append(s.consents[record.CustomerID], record)
	return nil
}

func (s *InMemoryConsentStore) ListByCustomer(_ context.Context, customerID string) ([]ConsentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ConsentRecord{}, s.consents[customerID]...), nil
}

func (s *InMemoryConsentStore) Revoke(_ context.Context, customerID string, purpose ConsentPurpose, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.consents[customerID]
	for i := range records {
		if records[i].Purpose == purpose {
			records[i].RevokedAt = &revokedAt
		}
	}
	s.consents[customerID] = records
	return nil
}
