// Package retry wraps external calls (VAT registry, rate source, payment
// gateway) with a bounded timeout and a small retry budget. Only failures
// classified as retryable are retried; definitive rejections (sanctions
// hit, invalid VAT format, declined capture) surface immediately.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy bounds a retried call.
type Policy struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// BaseDelay is the delay before the first retry; it doubles per retry.
	BaseDelay time.Duration
	// Jitter scales each delay by a random factor in [1-Jitter, 1+Jitter].
	Jitter float64
	// PerTryTimeout bounds each individual attempt. Zero means no bound
	// beyond the caller's context.
	PerTryTimeout time.Duration
}

// DefaultPolicy is the house policy: 2 retries with jittered exponential
// backoff, 5s per attempt. VIES-class registries are known to be
// intermittently slow, so the budget stays small and bounded.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:      3,
		BaseDelay:     200 * time.Millisecond,
		Jitter:        0.5,
		PerTryTimeout: 5 * time.Second,
	}
}

// Do runs fn under the policy. A retry happens only when fn fails and
// retryable(err) is true. The last error is returned when the budget is
// exhausted or the context ends.
func Do(ctx context.Context, policy Policy, retryable func(error) bool, fn func(ctx context.Context) error) error {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}

	var lastErr error
	delay := policy.BaseDelay

	for attempt := 0; attempt < policy.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(jittered(delay, policy.Jitter)):
			}
			delay *= 2
		}

		attemptCtx := ctx
		var cancel context.CancelFunc
		if policy.PerTryTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.PerTryTimeout)
		}
		lastErr = fn(attemptCtx)
		if cancel != nil {
			cancel()
		}

		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

func jittered(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return d
	}
	factor := 1 + jitter*(2*rand.Float64()-1)
	return time.Duration(float64(d) * factor)
}
