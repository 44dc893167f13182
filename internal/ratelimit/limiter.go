// Package ratelimit applies per-client request limits to the public API.
// Sliding windows rather than fixed buckets so bursts at a window
// boundary cannot double the effective limit.
package ratelimit

import (
	"sync"
	"time"
)

// EndpointClass categorizes endpoints for differentiated limits.
type EndpointClass string

const (
	// ClassAuth covers token minting.
	ClassAuth EndpointClass = "auth"
	// ClassPayments covers the payment pipeline endpoints.
	ClassPayments EndpointClass = "payments"
	// ClassChecks covers standalone tax and compliance checks.
	ClassChecks EndpointClass = "checks"
	// ClassReports covers report generation, which scans the audit trail.
	ClassReports EndpointClass = "reports"
)

// Per-minute limits by class. Payments are bounded by downstream
// gateway throughput; reports by audit store scan cost.
var classLimits = map[EndpointClass]int{
	ClassAuth:     10,
	ClassPayments: 60,
	ClassChecks:   120,
	ClassReports:  10,
}

const window = time.Minute

// Result is the outcome of one limit check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter tracks request timestamps per (key, class) pair in memory.
// State is per process; a horizontally scaled deployment limits per
// instance.
type Limiter struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	now     func() time.Time
}

// NewLimiter creates an in-memory limiter.
func NewLimiter() *Limiter {
	return &Limiter{
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records a request for key under class and reports whether it is
// within the class limit.
func (l *Limiter) Allow(key string, class EndpointClass) Result {
	limit, ok := classLimits[class]
	if !ok {
		limit = classLimits[ClassChecks]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	bucket := key + ":" + string(class)
	timestamps := prune(l.windows[bucket], now)

	if len(timestamps) >= limit {
		l.windows[bucket] = timestamps
		return Result{
			Allowed: false,
			Limit:   limit,
			ResetAt: timestamps[0].Add(window),
		}
	}

	timestamps = append(timestamps, now)
	l.windows[bucket] = timestamps
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(timestamps),
		ResetAt:   timestamps[0].Add(window),
	}
}

func prune(timestamps []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-window)
	kept := timestamps[:0]
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	return kept
}
