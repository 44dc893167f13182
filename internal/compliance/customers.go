package compliance

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCustomerNotFound is returned when the directory has no profile.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerDirectory answers prior-verification lookups. Kept small so
// tests can stub quickly.
type CustomerDirectory interface {
	Find(ctx context.Context, customerID string) (CustomerProfile, error)
	Save(ctx context.Context, profile CustomerProfile) error
}

// InMemoryDirectory implements CustomerDirectory with an in-process map.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	profiles map[string]CustomerProfile
}

// NewInMemoryDirectory creates an empty directory.
func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{profiles: make(map[string]CustomerProfile)}
}

func (d *InMemoryDirectory) Find(_ context.Context, customerID string) (CustomerProfile, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	profile, ok := d.profiles[customerID]
	if !ok {
		return CustomerProfile{}, ErrCustomerNotFound
	}
	return profile, nil
}

func (d *InMemoryDirectory) Save(_ context.Context, profile CustomerProfile) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if profile.DataCollectedAt.IsZero() {
		profile.DataCollectedAt = time.Now()
	}
	d.profiles[profile.CustomerID] = profile
	return nil
}
