package audit

import (
	"log/slog"
	"time"
)

// Recorder is the non-blocking facade domain services log through. Record
// never fails and never blocks: events land in the bounded buffer and the
// background worker persists them. A write problem shows up as a dropped
// counter and a local log line, not as a payment failure.
type Recorder struct {
	buffer *RingBuffer
	logger *slog.Logger
	now    func() time.Time
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the logger used for local drop reporting.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// NewRecorder creates a Recorder backed by buffer.
func NewRecorder(buffer *RingBuffer, opts ...RecorderOption) *Recorder {
	r := &Recorder{buffer: buffer, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record enqueues an event for background persistence.
func (r *Recorder) Record(event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}

	before := r.buffer.Dropped()
	r.buffer.Enqueue(event)
	if r.logger != nil && r.buffer.Dropped() > before {
		r.logger.Warn("audit buffer full, oldest event dropped",
			"event_type", event.EventType,
			"dropped_total", r.buffer.Dropped())
	}
}
