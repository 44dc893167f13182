// Package worker drains the audit buffer into the configured store.
// Persistence failures are logged and counted, never propagated; the
// primary payment flow must not depend on the audit path being healthy.
package worker

import (
	"context"
	"log/slog"
	"time"

	audit "crosspay/pkg/platform/audit"
)

// Metrics is the narrow metrics surface the worker needs.
type Metrics interface {
	IncAuditDropped()
}

// Worker consumes audit events from the ring buffer and persists them.
type Worker struct {
	store   audit.Store
	buffer  *audit.RingBuffer
	logger  *slog.Logger
	metrics Metrics

	// pollInterval bounds how long a buffered event waits when the
	// buffer is quiet.
	pollInterval time.Duration
}

// Option configures the Worker.
type Option func(*Worker)

// WithLogger sets the failure logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// WithMetrics sets the drop counter.
func WithMetrics(m Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithPollInterval overrides the idle poll interval (tests).
func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) { w.pollInterval = d }
}

// New constructs a Worker.
func New(store audit.Store, buffer *audit.RingBuffer, opts ...Option) *Worker {
	w := &Worker{
		store:        store,
		buffer:       buffer,
		pollInterval: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run drains the buffer until ctx is cancelled, then makes one final
// drain pass so events recorded before shutdown are not lost.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.drain(context.Background())
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		event, ok := w.buffer.Dequeue()
		if !ok {
			return
		}
		if err := w.store.Append(ctx, event); err != nil {
			if w.logger != nil {
				w.logger.Error("audit append failed, event discarded",
					"event_type", event.EventType,
					"entity_id", event.EntityID,
					"error", err)
			}
			if w.metrics != nil {
				w.metrics.IncAuditDropped()
			}
		}
	}
}
