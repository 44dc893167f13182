package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"crosspay/internal/platform/cache"
	"crosspay/internal/platform/metrics"
	dErrors "crosspay/pkg/domain-errors"
	"crosspay/pkg/platform/audit"
)

// Monitor runs the compliance checks and records each outcome on the
// audit trail. Checks are cached so a burst of activity for the same
// customer does not hammer the data sources.
type Monitor struct {
	directory CustomerDirectory
	consents  ConsentStore
	kycCache  *cache.Loader
	sanCache  *cache.Loader
	recorder  *audit.Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// MonitorOption configures the Monitor.
type MonitorOption func(*Monitor)

// WithMonitorLogger sets the logger.
func WithMonitorLogger(logger *slog.Logger) MonitorOption {
	return func(m *Monitor) { m.logger = logger }
}

// WithMonitorMetrics attaches cache metrics.
func WithMonitorMetrics(m *metrics.Metrics) MonitorOption {
	return func(mon *Monitor) { mon.metrics = m }
}

// NewMonitor constructs a Monitor. kycCache and sanCache should wrap
// 24h-TTL stores.
func NewMonitor(directory CustomerDirectory, consents ConsentStore, kycCache, sanCache *cache.Loader, recorder *audit.Recorder, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		directory: directory,
		consents:  consents,
		kycCache:  kycCache,
		sanCache:  sanCache,
		recorder:  recorder,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PerformKYCCheck scores the customer's risk for this transaction.
// Results are cached per (customer, amount).
func (m *Monitor) PerformKYCCheck(ctx context.Context, in KYCInput) (KYCResult, error) {
	if in.CustomerID == "" {
		return KYCResult{}, dErrors.New(dErrors.CodeValidation, "customer id is required")
	}
	if in.Amount <= 0 {
		return KYCResult{}, dErrors.Newf(dErrors.CodeValidation, "amount must be positive, got %d", in.Amount)
	}

	key := fmt.Sprintf("kyc:%s:%d", in.CustomerID, in.Amount)
	raw, hit, err := m.kycCache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		identity, lookupErr := lookupIdentity(ctx, m.directory, in.CustomerID)
		if lookupErr != nil && m.logger != nil {
			m.logger.Warn("identity lookup failed during kyc", "customer_id", in.CustomerID, "error", lookupErr)
		}

		result := scoreKYC(in, identity, lookupErr)
		result.CheckedAt = m.now()
		m.recordCheck(audit.EventKYCCheck, in.CustomerID, "kyc_risk_model", kycStatus(result), result.RiskScore, map[string]any{
			"amount":          in.Amount,
			"country":         in.Country,
			"checks":          result.ChecksPerformed,
			"failure_reasons": result.FailureReasons,
		})
		return json.Marshal(result)
	})
	if err != nil {
		return KYCResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "kyc check")
	}
	m.countCache("kyc", hit)

	var result KYCResult
	if err := json.Unmarshal(raw, &result); err != nil {
		_ = m.kycCache.Invalidate(ctx, key)
		return KYCResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode cached kyc result")
	}
	return result, nil
}

// CheckSanctionsList screens the customer against the restricted lists.
// Results are cached per (customer, country).
func (m *Monitor) CheckSanctionsList(ctx context.Context, in SanctionsInput) (SanctionsResult, error) {
	if in.CustomerID == "" {
		return SanctionsResult{}, dErrors.New(dErrors.CodeValidation, "customer id is required")
	}

	key := fmt.Sprintf("sanctions:%s:%s", in.CustomerID, in.Country)
	raw, hit, err := m.sanCache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		result := screenSanctions(in)
		result.ScreenedAt = m.now()

		status := audit.StatusPassed
		if result.Match {
			status = audit.StatusFailed
		}
		m.recordCheck(audit.EventSanctionsScreening, in.CustomerID, "sanctions_screening", status, result.RiskScore, map[string]any{
			"country":    in.Country,
			"matched_on": result.MatchedOn,
			"pep_signal": result.PEPSignal,
		})
		return json.Marshal(result)
	})
	if err != nil {
		return SanctionsResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "sanctions screening")
	}
	m.countCache("sanctions", hit)

	var result SanctionsResult
	if err := json.Unmarshal(raw, &result); err != nil {
		_ = m.sanCache.Invalidate(ctx, key)
		return SanctionsResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "decode cached sanctions result")
	}
	return result, nil
}

// ValidateGDPRCompliance checks the lawfulness of processing this
// customer's data for the stated purpose.
func (m *Monitor) ValidateGDPRCompliance(ctx context.Context, in GDPRInput) (GDPRResult, error) {
	if in.CustomerID == "" {
		return GDPRResult{}, dErrors.New(dErrors.CodeValidation, "customer id is required")
	}
	if in.DataProcessingPurpose == "" {
		return GDPRResult{}, dErrors.New(dErrors.CodeValidation, "data processing purpose is required")
	}

	consents, err := m.consents.ListByCustomer(ctx, in.CustomerID)
	if err != nil {
		return GDPRResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "load consent records")
	}

	profile, err := m.directory.Find(ctx, in.CustomerID)
	if err != nil && !errors.Is(err, ErrCustomerNotFound) {
		return GDPRResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "load customer profile")
	}

	result := evaluateGDPR(in, consents, profile, m.now())

	status := audit.StatusPassed
	if !result.Compliant {
		status = audit.StatusFailed
	}
	m.recordCheck(audit.EventGDPRValidation, in.CustomerID, "gdpr_lawfulness", status, 0, map[string]any{
		"purpose": in.DataProcessingPurpose,
		"issues":  result.Issues,
	})
	return result, nil
}

// LogComplianceEvent appends an event to the audit trail. It never
// fails and never blocks the primary flow.
func (m *Monitor) LogComplianceEvent(event audit.Event) {
	m.recorder.Record(event)
}

func (m *Monitor) recordCheck(eventType audit.EventType, entityID, rule string, status audit.Status, riskScore int, details map[string]any) {
	event := audit.Event{
		EventType:  eventType,
		EntityType: "customer",
		EntityID:   entityID,
		Rule:       rule,
		Status:     status,
		Details:    details,
	}
	if riskScore > 0 {
		event = event.WithRisk(riskScore)
	}
	m.recorder.Record(event)
}

func (m *Monitor) countCache(name string, hit bool) {
	if m.metrics == nil {
		return
	}
	if hit {
		m.metrics.CacheHits.WithLabelValues(name).Inc()
	} else {
		m.metrics.CacheMisses.WithLabelValues(name).Inc()
	}
}

func kycStatus(result KYCResult) audit.Status {
	switch {
	case !result.Passed:
		return audit.StatusFailed
	case result.RequiresManualReview:
		return audit.StatusManualReview
	default:
		return audit.StatusPassed
	}
}
