package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PaymentsProcessed *prometheus.CounterVec
	PaymentsBlocked   *prometheus.CounterVec
	ManualReviews     prometheus.Counter
	CacheHits         *prometheus.CounterVec
	CacheMisses       *prometheus.CounterVec
	AuditDropped      prometheus.Counter
	ExternalCalls     *prometheus.HistogramVec
}

// IncAuditDropped satisfies the audit worker's metrics interface.
func (m *Metrics) IncAuditDropped() {
	m.AuditDropped.Inc()
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PaymentsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crosspay_payments_processed_total",
			Help: "Payments completing the pipeline, by terminal status",
		}, []string{"status"}),
		PaymentsBlocked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crosspay_payments_blocked_total",
			Help: "Payments blocked at the compliance gate, by reason",
		}, []string{"reason"}),
		ManualReviews: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crosspay_manual_reviews_total",
			Help: "Payments flagged for manual review",
		}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crosspay_cache_hits_total",
			Help: "Cache hits by cache name",
		}, []string{"cache"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "crosspay_cache_misses_total",
			Help: "Cache misses by cache name",
		}, []string{"cache"}),
		AuditDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crosspay_audit_events_dropped_total",
			Help: "Audit events dropped because the buffer was full or the store kept failing",
		}),
		ExternalCalls: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crosspay_external_call_duration_seconds",
			Help:    "Latency of calls to external collaborators",
			Buckets: prometheus.DefBuckets,
		}, []string{"target"}),
	}
}
