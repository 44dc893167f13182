package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"crosspay/internal/platform/cache"
	"crosspay/internal/platform/config"
	dErrors "crosspay/pkg/domain-errors"
	"crosspay/pkg/platform/audit"
)

type MonitorSuite struct {
	suite.Suite
	directory *InMemoryDirectory
	consents  *InMemoryConsentStore
	buffer    *audit.RingBuffer
	monitor   *Monitor
}

func TestMonitorSuite(t *testing.T) {
	suite.Run(t, new(MonitorSuite))
}

func (s *MonitorSuite) SetupTest() {
	s.directory = NewInMemoryDirectory()
	s.consents = NewInMemoryConsentStore()
	s.buffer = audit.NewRingBuffer(64)

	s.monitor = NewMonitor(
		s.directory,
		s.consents,
		cache.NewLoader(cache.NewMemoryStore(), config.KYCResultTTL),
		cache.NewLoader(cache.NewMemoryStore(), config.SanctionsResultTTL),
		audit.NewRecorder(s.buffer),
	)
}

func (s *MonitorSuite) drainEvents() []audit.Event {
	var events []audit.Event
	for {
		event, ok := s.buffer.Dequeue()
		if !ok {
			return events
		}
		events = append(events, event)
	}
}

func (s *MonitorSuite) TestKYCRecordsAuditEvent() {
	result, err := s.monitor.PerformKYCCheck(context.Background(), KYCInput{
		CustomerID: "cust-1", Amount: 5000, Country: "DE",
	})
	s.Require().NoError(err)
	s.True(result.Passed)

	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.EventKYCCheck, events[0].EventType)
	s.Equal("cust-1", events[0].EntityID)
	s.Equal(audit.StatusPassed, events[0].Status)
}

func (s *MonitorSuite) TestKYCCachedPerCustomerAndAmount() {
	ctx := context.Background()
	in := KYCInput{CustomerID: "cust-1", Amount: 5000, Country: "DE"}

	_, err := s.monitor.PerformKYCCheck(ctx, in)
	s.Require().NoError(err)
	_, err = s.monitor.PerformKYCCheck(ctx, in)
	s.Require().NoError(err)

	// The cached path runs no check, so only one audit event exists.
	s.Len(s.drainEvents(), 1)

	// A different amount is a distinct check.
	in.Amount = 9000
	_, err = s.monitor.PerformKYCCheck(ctx, in)
	s.Require().NoError(err)
	s.Len(s.drainEvents(), 1)
}

func (s *MonitorSuite) TestKYCUsesDirectoryEvidence() {
	ctx := context.Background()
	s.Require().NoError(s.directory.Save(ctx, CustomerProfile{
		CustomerID:     "rejected-1",
		IdentityStatus: IdentityRejected,
	}))

	result, err := s.monitor.PerformKYCCheck(ctx, KYCInput{
		CustomerID: "rejected-1", Amount: 5000, Country: "DE",
	})
	s.Require().NoError(err)

	s.False(result.Passed)
	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.StatusFailed, events[0].Status)
}

func (s *MonitorSuite) TestKYCValidation() {
	_, err := s.monitor.PerformKYCCheck(context.Background(), KYCInput{Amount: 100})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.monitor.PerformKYCCheck(context.Background(), KYCInput{CustomerID: "c", Amount: 0})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *MonitorSuite) TestSanctionsMatchRecordsFailedEvent() {
	result, err := s.monitor.CheckSanctionsList(context.Background(), SanctionsInput{
		CustomerID:   "cust-2",
		CustomerName: "Ivan Petrov",
		Country:      "DE",
	})
	s.Require().NoError(err)

	s.True(result.Match)
	s.Equal(100, result.RiskScore)

	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.EventSanctionsScreening, events[0].EventType)
	s.Equal(audit.StatusFailed, events[0].Status)
	s.Require().NotNil(events[0].RiskScore)
	s.Equal(100, *events[0].RiskScore)
}

func (s *MonitorSuite) TestSanctionsCachedPerCustomerAndCountry() {
	ctx := context.Background()
	in := SanctionsInput{CustomerID: "cust-3", CustomerName: "Jane Doe", Country: "DE"}

	_, err := s.monitor.CheckSanctionsList(ctx, in)
	s.Require().NoError(err)
	_, err = s.monitor.CheckSanctionsList(ctx, in)
	s.Require().NoError(err)
	s.Len(s.drainEvents(), 1)

	in.Country = "FR"
	_, err = s.monitor.CheckSanctionsList(ctx, in)
	s.Require().NoError(err)
	s.Len(s.drainEvents(), 1)
}

func (s *MonitorSuite) TestGDPRCompliantWithStoredConsent() {
	ctx := context.Background()
	s.Require().NoError(s.consents.Save(ctx, ConsentRecord{
		CustomerID: "cust-4",
		Purpose:    PurposePaymentProcessing,
		Granted:    true,
		GrantedAt:  time.Now().Add(-time.Hour),
	}))
	s.Require().NoError(s.directory.Save(ctx, CustomerProfile{
		CustomerID:      "cust-4",
		IdentityStatus:  IdentityVerified,
		DataCollectedAt: time.Now().Add(-24 * time.Hour),
	}))

	result, err := s.monitor.ValidateGDPRCompliance(ctx, GDPRInput{
		CustomerID:            "cust-4",
		DataProcessingPurpose: string(PurposePaymentProcessing),
		RetentionPeriodDays:   365,
	})
	s.Require().NoError(err)
	s.True(result.Compliant)

	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.EventGDPRValidation, events[0].EventType)
	s.Equal(audit.StatusPassed, events[0].Status)
}

func (s *MonitorSuite) TestGDPRNonCompliantRecordsFailure() {
	result, err := s.monitor.ValidateGDPRCompliance(context.Background(), GDPRInput{
		CustomerID:            "cust-5",
		DataProcessingPurpose: string(PurposeMarketing),
	})
	s.Require().NoError(err)
	s.False(result.Compliant)

	events := s.drainEvents()
	s.Require().Len(events, 1)
	s.Equal(audit.StatusFailed, events[0].Status)
}

func (s *MonitorSuite) TestLogComplianceEventNeverBlocks() {
	for i := 0; i < 200; i++ {
		s.monitor.LogComplianceEvent(audit.Event{
			EventType: audit.EventPaymentProcessed,
			EntityID:  "tx-1",
			Status:    audit.StatusPassed,
		})
	}
	// Buffer capacity is 64; the rest were dropped, not blocked on.
	s.Equal(64, s.buffer.Len())
	s.EqualValues(136, s.buffer.Dropped())
}
