package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "crosspay/pkg/domain-errors"
	"crosspay/pkg/platform/audit"
	auditmem "crosspay/pkg/platform/audit/store/memory"
)

func TestGenerateComplianceReport(t *testing.T) {
	store := auditmem.New()
	ctx := context.Background()

	periodStart := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	inPeriod := periodStart.Add(48 * time.Hour)

	require.NoError(t, store.Append(ctx, audit.Event{
		EventType: audit.EventKYCCheck, EntityID: "c1", Rule: "kyc_risk_model",
		Status: audit.StatusPassed, CreatedAt: inPeriod,
	}))
	require.NoError(t, store.Append(ctx, audit.Event{
		EventType: audit.EventSanctionsScreening, EntityID: "c2", Rule: "sanctions_screening",
		Status: audit.StatusFailed, CreatedAt: inPeriod,
	}.WithRisk(100)))
	require.NoError(t, store.Append(ctx, audit.Event{
		EventType: audit.EventKYCCheck, EntityID: "c3", Rule: "kyc_risk_model",
		Status: audit.StatusManualReview, CreatedAt: inPeriod,
	}.WithRisk(60)))
	// Outside the period; must not count.
	require.NoError(t, store.Append(ctx, audit.Event{
		EventType: audit.EventKYCCheck, EntityID: "c4", Rule: "kyc_risk_model",
		Status: audit.StatusPassed, CreatedAt: periodEnd.Add(time.Hour),
	}))

	reporter := NewReporter(store, nil)
	report, err := reporter.GenerateComplianceReport(ctx, "monthly_aml", "DE", periodStart, periodEnd)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ArtifactID)
	assert.Equal(t, "monthly_aml", report.ReportType)
	assert.Equal(t, "DE", report.Jurisdiction)
	assert.Equal(t, 3, report.TotalEvents)
	assert.Equal(t, 1, report.StatusCounts["passed"])
	assert.Equal(t, 1, report.StatusCounts["failed"])
	assert.Equal(t, 1, report.StatusCounts["manual_review"])

	// Only the risk-100 event clears the flag threshold.
	assert.Equal(t, 1, report.FlaggedCount)
	require.Len(t, report.FlaggedEvents, 1)
	assert.Equal(t, "c2", report.FlaggedEvents[0].EntityID)
	assert.Equal(t, 100, report.FlaggedEvents[0].RiskScore)
}

func TestGenerateComplianceReport_Validation(t *testing.T) {
	reporter := NewReporter(auditmem.New(), nil)
	ctx := context.Background()
	now := time.Now()

	_, err := reporter.GenerateComplianceReport(ctx, "", "", now.Add(-time.Hour), now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = reporter.GenerateComplianceReport(ctx, "monthly_aml", "", now, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
