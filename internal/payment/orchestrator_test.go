package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"crosspay/internal/clients"
	"crosspay/internal/compliance"
	"crosspay/internal/currency"
	"crosspay/internal/payment/mocks"
	"crosspay/internal/tax"
	dErrors "crosspay/pkg/domain-errors"
	"crosspay/pkg/platform/audit"
	"crosspay/pkg/platform/retry"
)

type OrchestratorSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	converter *mocks.MockConverter
	taxEngine *mocks.MockTaxCalculator
	monitor   *mocks.MockComplianceChecker
	gateway   *mocks.MockGateway
	records   *InMemoryRecordStore
	buffer    *audit.RingBuffer
	orch      *Orchestrator
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.converter = mocks.NewMockConverter(s.ctrl)
	s.taxEngine = mocks.NewMockTaxCalculator(s.ctrl)
	s.monitor = mocks.NewMockComplianceChecker(s.ctrl)
	s.gateway = mocks.NewMockGateway(s.ctrl)
	s.records = NewInMemoryRecordStore()
	s.buffer = audit.NewRingBuffer(64)

	s.orch = New(s.converter, s.taxEngine, s.monitor, s.gateway, s.records,
		audit.NewRecorder(s.buffer), "EUR")
}

func validInput() Input {
	return Input{
		Amount:           10000,
		Currency:         "USD",
		CustomerID:       "cust-1",
		CustomerName:     "Jane Doe",
		CustomerCountry:  "DE",
		CustomerType:     "individual",
		ProductCategory:  "standard",
		PaymentMethodRef: "pm-1",
	}
}

func (s *OrchestratorSuite) expectCleanCompliance() {
	s.monitor.EXPECT().CheckSanctionsList(gomock.Any(), gomock.Any()).
		Return(compliance.SanctionsResult{}, nil)
	s.monitor.EXPECT().PerformKYCCheck(gomock.Any(), gomock.Any()).
		Return(compliance.KYCResult{Passed: true}, nil)
	s.monitor.EXPECT().ValidateGDPRCompliance(gomock.Any(), gomock.Any()).
		Return(compliance.GDPRResult{Compliant: true}, nil)
}

func (s *OrchestratorSuite) TestHappyPath() {
	s.expectCleanCompliance()
	asOf := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s.converter.EXPECT().Convert(gomock.Any(), int64(10000), "USD", "EUR").
		Return(currency.ConversionResult{
			OriginalAmount:  10000,
			ConvertedAmount: 9200,
			FromCurrency:    "USD",
			ToCurrency:      "EUR",
			ExchangeRate:    0.92,
			Fees:            46,
			RateProvider:    "ecb",
			RateAsOf:        asOf,
		}, nil)
	s.taxEngine.EXPECT().CalculateTax(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in tax.Input) (tax.Result, error) {
			s.Equal(int64(9200), in.Amount)
			return tax.Result{TaxAmount: 1748, TaxRate: 0.19, Jurisdiction: "DE", TaxType: tax.SystemVAT}, nil
		})
	s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req clients.CaptureRequest) (clients.CaptureResult, error) {
			s.Equal(int64(9200+1748), req.Amount)
			s.Equal("EUR", req.Currency)
			s.Equal("cust-1", req.CustomerRef)
			s.Equal("USD", req.Metadata["original_currency"])
			return clients.CaptureResult{GatewayTransactionID: "gw-1", Status: "captured"}, nil
		})

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())
	s.Require().NoError(err)

	s.True(result.Success)
	s.Equal(StatePersisted, result.State)
	s.Equal(int64(9200), result.SettlementAmount)
	s.Equal("EUR", result.SettlementCurrency)
	s.Equal(int64(1748), result.TaxAmount)
	s.Equal("gw-1", result.GatewayTransactionID)
	s.Equal("ecb", result.RateProvider)
	s.Equal(asOf, result.RateAsOf)
	s.False(result.RequiresManualReview)

	stored, err := s.records.FindByTransactionID(context.Background(), result.TransactionID)
	s.Require().NoError(err)
	s.Equal(result.GatewayTransactionID, stored.GatewayTransactionID)
}

func (s *OrchestratorSuite) TestUnsupportedCurrencyMakesNoDownstreamCalls() {
	in := validInput()
	in.Currency = "XYZ"

	// No expectations set: any compliance, conversion, or gateway call
	// would fail the test via the controller.
	result, err := s.orch.ProcessInternationalPayment(context.Background(), in)

	s.True(dErrors.HasCode(err, dErrors.CodeUnsupportedCurrency))
	s.Equal(StateFailed, result.State)
	s.Equal(0, s.records.Len())
}

func (s *OrchestratorSuite) TestSanctionsMatchBlocksBeforeConversion() {
	s.monitor.EXPECT().CheckSanctionsList(gomock.Any(), gomock.Any()).
		Return(compliance.SanctionsResult{Match: true, RiskScore: 100, MatchedOn: "country"}, nil)

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())

	s.True(dErrors.HasCode(err, dErrors.CodeComplianceBlocked))
	s.Equal(StateBlocked, result.State)
	s.Equal("sanctions screening", result.ComplianceStatus)

	event, ok := s.buffer.Dequeue()
	s.Require().True(ok)
	s.Equal(audit.EventPaymentBlocked, event.EventType)
}

func (s *OrchestratorSuite) TestKYCFailureBlocks() {
	s.monitor.EXPECT().CheckSanctionsList(gomock.Any(), gomock.Any()).
		Return(compliance.SanctionsResult{}, nil)
	s.monitor.EXPECT().PerformKYCCheck(gomock.Any(), gomock.Any()).
		Return(compliance.KYCResult{Passed: false, FailureReasons: []string{"identity previously rejected"}}, nil)

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())

	s.True(dErrors.HasCode(err, dErrors.CodeComplianceBlocked))
	s.Equal(StateBlocked, result.State)
	s.Equal("KYC failed", result.ComplianceStatus)
}

func (s *OrchestratorSuite) TestGDPRIssuesWarnButDoNotBlock() {
	s.monitor.EXPECT().CheckSanctionsList(gomock.Any(), gomock.Any()).
		Return(compliance.SanctionsResult{}, nil)
	s.monitor.EXPECT().PerformKYCCheck(gomock.Any(), gomock.Any()).
		Return(compliance.KYCResult{Passed: true}, nil)
	s.monitor.EXPECT().ValidateGDPRCompliance(gomock.Any(), gomock.Any()).
		Return(compliance.GDPRResult{Compliant: false, Issues: []string{"no affirmative consent on record"}}, nil)
	s.expectConvertAndTax()
	s.expectCapture()

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())
	s.Require().NoError(err)

	s.True(result.Success)
	s.Require().Len(result.Warnings, 1)
	s.Contains(result.Warnings[0], "GDPR:")
}

func (s *OrchestratorSuite) TestNonEUCustomerSkipsGDPR() {
	in := validInput()
	in.CustomerCountry = "US"

	s.monitor.EXPECT().CheckSanctionsList(gomock.Any(), gomock.Any()).
		Return(compliance.SanctionsResult{}, nil)
	s.monitor.EXPECT().PerformKYCCheck(gomock.Any(), gomock.Any()).
		Return(compliance.KYCResult{Passed: true}, nil)
	s.expectConvertAndTax()
	s.expectCapture()

	_, err := s.orch.ProcessInternationalPayment(context.Background(), in)
	s.Require().NoError(err)
}

func (s *OrchestratorSuite) TestConversionFailureIsFatal() {
	s.expectCleanCompliance()
	s.converter.EXPECT().Convert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(currency.ConversionResult{}, dErrors.New(dErrors.CodeConversionFailed, "rate source down"))

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())

	s.True(dErrors.HasCode(err, dErrors.CodeConversionFailed))
	s.Equal(StateFailed, result.State)
}

func (s *OrchestratorSuite) TestTaxUnavailableDegradesToManualReview() {
	s.expectCleanCompliance()
	s.converter.EXPECT().Convert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(currency.ConversionResult{ConvertedAmount: 9200, ToCurrency: "EUR", ExchangeRate: 0.92}, nil)
	s.taxEngine.EXPECT().CalculateTax(gomock.Any(), gomock.Any()).
		Return(tax.Result{}, dErrors.New(dErrors.CodeTaxUnavailable, "reference store down"))
	s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req clients.CaptureRequest) (clients.CaptureResult, error) {
			// Settlement reverts to the original amount with zero tax.
			s.Equal(int64(10000), req.Amount)
			return clients.CaptureResult{GatewayTransactionID: "gw-2"}, nil
		})

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())
	s.Require().NoError(err)

	s.True(result.Success)
	s.True(result.RequiresManualReview)
	s.Equal(int64(0), result.TaxAmount)
	s.Equal(int64(10000), result.SettlementAmount)
	s.Contains(result.Warnings, "Tax calculation failed - manual review required")
}

func (s *OrchestratorSuite) TestGatewayFailureFailsTransaction() {
	s.expectCleanCompliance()
	s.expectConvertAndTax()
	s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).
		Return(clients.CaptureResult{}, clients.NewClientError(clients.ErrorRejected, "payment_gateway", "declined", nil))

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())

	s.True(dErrors.HasCode(err, dErrors.CodeGateway))
	s.Equal(StateFailed, result.State)
	s.Equal(0, s.records.Len())
}

func (s *OrchestratorSuite) TestCaptureRetriesTransientOutage() {
	s.orch = New(s.converter, s.taxEngine, s.monitor, s.gateway, s.records,
		audit.NewRecorder(s.buffer), "EUR",
		WithRetryPolicy(retry.Policy{Attempts: 3, BaseDelay: time.Millisecond}))

	s.expectCleanCompliance()
	s.expectConvertAndTax()

	outage := clients.NewClientError(clients.ErrorOutage, "payment_gateway", "gateway unreachable", nil)
	gomock.InOrder(
		s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).Return(clients.CaptureResult{}, outage),
		s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).Return(clients.CaptureResult{}, outage),
		s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req clients.CaptureRequest) (clients.CaptureResult, error) {
				// Every attempt carries the same idempotency key, so
				// the gateway can dedupe a retried timeout.
				s.NotEmpty(req.Metadata["idempotency_key"])
				s.Equal(req.Metadata["transaction_id"], req.Metadata["idempotency_key"])
				return clients.CaptureResult{GatewayTransactionID: "gw-3", Status: "captured"}, nil
			}),
	)

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())
	s.Require().NoError(err)

	s.True(result.Success)
	s.Equal("gw-3", result.GatewayTransactionID)
}

func (s *OrchestratorSuite) TestCaptureDeclineIsNotRetried() {
	s.orch = New(s.converter, s.taxEngine, s.monitor, s.gateway, s.records,
		audit.NewRecorder(s.buffer), "EUR",
		WithRetryPolicy(retry.Policy{Attempts: 3, BaseDelay: time.Millisecond}))

	s.expectCleanCompliance()
	s.expectConvertAndTax()
	s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).
		Return(clients.CaptureResult{}, clients.NewClientError(
			clients.ErrorRejected, "payment_gateway", "capture declined: insufficient funds", nil)).
		Times(1)

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())

	s.True(dErrors.HasCode(err, dErrors.CodeGateway))
	s.Equal(StateFailed, result.State)
}

func (s *OrchestratorSuite) TestCancellationBeforeCapture() {
	s.expectCleanCompliance()
	ctx, cancel := context.WithCancel(context.Background())
	s.converter.EXPECT().Convert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, int64, string, string) (currency.ConversionResult, error) {
			cancel()
			return currency.ConversionResult{ConvertedAmount: 9200, ToCurrency: "EUR"}, nil
		})
	s.taxEngine.EXPECT().CalculateTax(gomock.Any(), gomock.Any()).
		Return(tax.Result{TaxAmount: 100}, nil)

	// No gateway expectation: capture must not be invoked.
	result, err := s.orch.ProcessInternationalPayment(ctx, validInput())

	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	s.Equal(StateFailed, result.State)
}

func (s *OrchestratorSuite) TestKYCManualReviewFlagPropagates() {
	s.monitor.EXPECT().CheckSanctionsList(gomock.Any(), gomock.Any()).
		Return(compliance.SanctionsResult{}, nil)
	s.monitor.EXPECT().PerformKYCCheck(gomock.Any(), gomock.Any()).
		Return(compliance.KYCResult{Passed: true, RiskScore: 80, RequiresManualReview: true}, nil)
	s.monitor.EXPECT().ValidateGDPRCompliance(gomock.Any(), gomock.Any()).
		Return(compliance.GDPRResult{Compliant: true}, nil)
	s.expectConvertAndTax()
	s.expectCapture()

	result, err := s.orch.ProcessInternationalPayment(context.Background(), validInput())
	s.Require().NoError(err)

	s.True(result.Success)
	s.True(result.RequiresManualReview)
}

func (s *OrchestratorSuite) expectConvertAndTax() {
	s.converter.EXPECT().Convert(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(currency.ConversionResult{ConvertedAmount: 9200, ToCurrency: "EUR", ExchangeRate: 0.92}, nil)
	s.taxEngine.EXPECT().CalculateTax(gomock.Any(), gomock.Any()).
		Return(tax.Result{TaxAmount: 1748, TaxRate: 0.19, Jurisdiction: "DE"}, nil)
}

func (s *OrchestratorSuite) expectCapture() {
	s.gateway.EXPECT().Capture(gomock.Any(), gomock.Any()).
		Return(clients.CaptureResult{GatewayTransactionID: "gw-1", Status: "captured"}, nil)
}
