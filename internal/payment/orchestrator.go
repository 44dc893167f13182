package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"crosspay/internal/clients"
	"crosspay/internal/compliance"
	"crosspay/internal/currency"
	"crosspay/internal/platform/metrics"
	"crosspay/internal/tax"
	dErrors "crosspay/pkg/domain-errors"
	"crosspay/pkg/platform/audit"
	"crosspay/pkg/platform/retry"
	pstrings "crosspay/pkg/platform/strings"
)

//go:generate mockgen -source=orchestrator.go -destination=mocks/mocks.go -package=mocks

// Converter converts an amount between currencies.
type Converter interface {
	Convert(ctx context.Context, amount int64, from, to string) (currency.ConversionResult, error)
}

// TaxCalculator resolves the tax treatment of a charge.
type TaxCalculator interface {
	CalculateTax(ctx context.Context, in tax.Input) (tax.Result, error)
}

// ComplianceChecker runs the pre-capture compliance gate.
type ComplianceChecker interface {
	PerformKYCCheck(ctx context.Context, in compliance.KYCInput) (compliance.KYCResult, error)
	CheckSanctionsList(ctx context.Context, in compliance.SanctionsInput) (compliance.SanctionsResult, error)
	ValidateGDPRCompliance(ctx context.Context, in compliance.GDPRInput) (compliance.GDPRResult, error)
}

// Gateway captures settlements. Alias kept here so mocks generate
// alongside the other collaborators.
type Gateway interface {
	Capture(ctx context.Context, req clients.CaptureRequest) (clients.CaptureResult, error)
}

const warnTaxDegraded = "Tax calculation failed - manual review required"

// Orchestrator owns one payment pipeline run end to end. All
// collaborators are injected; nothing here talks to the network
// directly.
type Orchestrator struct {
	converter  Converter
	taxEngine  TaxCalculator
	monitor    ComplianceChecker
	gateway    Gateway
	records    RecordStore
	recorder   *audit.Recorder
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
	settlement string
	policy     retry.Policy
	now        func() time.Time
	newID      func() string
}

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithRetryPolicy overrides the capture retry policy.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(o *Orchestrator) { o.policy = policy }
}

// New constructs an Orchestrator settling in settlementCurrency.
func New(converter Converter, taxEngine TaxCalculator, monitor ComplianceChecker, gateway Gateway, records RecordStore, recorder *audit.Recorder, settlementCurrency string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		converter:  converter,
		taxEngine:  taxEngine,
		monitor:    monitor,
		gateway:    gateway,
		records:    records,
		recorder:   recorder,
		tracer:     otel.Tracer("crosspay/payment"),
		settlement: settlementCurrency,
		policy:     retry.DefaultPolicy(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ProcessInternationalPayment runs the full pipeline: validation,
// compliance gate, conversion, tax, capture, persistence. Errors before
// capture propagate; once capture succeeds the transaction is committed
// and the remaining steps are best-effort.
func (o *Orchestrator) ProcessInternationalPayment(ctx context.Context, in Input) (Result, error) {
	ctx, span := o.tracer.Start(ctx, "payment.process",
		trace.WithAttributes(
			attribute.String("currency", in.Currency),
			attribute.String("customer_country", in.CustomerCountry),
		))
	defer span.End()

	result := Result{
		TransactionID:    o.newID(),
		State:            StateValidating,
		OriginalAmount:   in.Amount,
		OriginalCurrency: in.Currency,
		CreatedAt:        o.now(),
	}
	span.SetAttributes(attribute.String("transaction_id", result.TransactionID))

	if err := o.validate(in); err != nil {
		return o.fail(ctx, result, err)
	}

	result.State = StateComplianceChecking
	if err := o.complianceGate(ctx, in, &result); err != nil {
		return o.block(ctx, result, err)
	}

	result.State = StateConverting
	conversion, err := o.converter.Convert(ctx, in.Amount, in.Currency, o.settlement)
	if err != nil {
		return o.fail(ctx, result, err)
	}
	result.SettlementAmount = conversion.ConvertedAmount
	result.SettlementCurrency = conversion.ToCurrency
	result.ExchangeRate = conversion.ExchangeRate
	result.ConversionFees = conversion.Fees
	result.RateProvider = conversion.RateProvider
	result.RateAsOf = conversion.RateAsOf

	result.State = StateTaxing
	o.applyTax(ctx, in, conversion, &result)

	// Point of no return: the transaction is cancellable until capture
	// is invoked, and committed after it succeeds.
	if err := ctx.Err(); err != nil {
		return o.fail(ctx, result, dErrors.Wrap(err, dErrors.CodeTimeout, "cancelled before capture"))
	}

	result.State = StateCapturing
	capture, err := o.capture(ctx, in, result)
	if err != nil {
		return o.fail(ctx, result, err)
	}
	result.GatewayTransactionID = capture.GatewayTransactionID

	result.State = StatePersisted
	result.Success = true
	if result.ComplianceStatus == "" {
		result.ComplianceStatus = "passed"
	}
	// The compliance and tax steps can each surface the same advisory.
	result.Warnings = pstrings.DedupeAndTrim(result.Warnings)
	o.finish(ctx, in, result)

	if o.metrics != nil {
		o.metrics.PaymentsProcessed.WithLabelValues(string(StatePersisted)).Inc()
		if result.RequiresManualReview {
			o.metrics.ManualReviews.Inc()
		}
	}
	return result, nil
}

// ProcessRegionalPayment validates the regional method and delegates to
// the standard pipeline, annotating the result with the method's name
// and expected processing time.
func (o *Orchestrator) ProcessRegionalPayment(ctx context.Context, in RegionalInput) (Result, error) {
	method, err := resolveMethod(in)
	if err != nil {
		return Result{
			TransactionID:    o.newID(),
			State:            StateFailed,
			OriginalAmount:   in.Amount,
			OriginalCurrency: in.Currency,
			Error:            err.Error(),
			CreatedAt:        o.now(),
		}, err
	}

	in.PaymentMethodRef = method.Name
	result, err := o.ProcessInternationalPayment(ctx, in.Input)
	result.Method = method.Name
	result.ProcessingTime = method.ProcessingTime
	return result, err
}

func (o *Orchestrator) validate(in Input) error {
	if in.Amount <= 0 {
		return dErrors.Newf(dErrors.CodeValidation, "amount must be positive, got %d", in.Amount)
	}
	if in.CustomerID == "" {
		return dErrors.New(dErrors.CodeValidation, "customer id is required")
	}
	if len(in.CustomerCountry) != 2 {
		return dErrors.New(dErrors.CodeValidation, "customer country must be ISO 3166 alpha-2")
	}
	if !IsSupportedCurrency(in.Currency) {
		return dErrors.Newf(dErrors.CodeUnsupportedCurrency, "unsupported currency %q", in.Currency)
	}
	return nil
}

// complianceGate runs sanctions, KYC, then GDPR. Sanctions and KYC are
// hard blocks; GDPR findings for EU customers become warnings.
func (o *Orchestrator) complianceGate(ctx context.Context, in Input, result *Result) error {
	ctx, span := o.tracer.Start(ctx, "payment.compliance_gate")
	defer span.End()

	screening, err := o.monitor.CheckSanctionsList(ctx, compliance.SanctionsInput{
		CustomerID:   in.CustomerID,
		CustomerName: in.CustomerName,
		Country:      in.CustomerCountry,
		BusinessName: in.BusinessName,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "sanctions screening")
	}
	if screening.Match {
		result.ComplianceStatus = "sanctions screening"
		return dErrors.Newf(dErrors.CodeComplianceBlocked,
			"sanctions match on %s (risk %d)", screening.MatchedOn, screening.RiskScore)
	}

	kyc, err := o.monitor.PerformKYCCheck(ctx, compliance.KYCInput{
		CustomerID:     in.CustomerID,
		Amount:         in.Amount,
		Country:        in.CustomerCountry,
		DocumentType:   in.DocumentType,
		DocumentNumber: in.DocumentNumber,
		CustomerType:   in.CustomerType,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "kyc check")
	}
	if !kyc.Passed {
		result.ComplianceStatus = "KYC failed"
		return dErrors.Newf(dErrors.CodeComplianceBlocked,
			"kyc failed: %v", kyc.FailureReasons)
	}
	if kyc.RequiresManualReview {
		result.RequiresManualReview = true
	}

	if tax.IsEUMember(in.CustomerCountry) {
		purpose := in.DataProcessingPurpose
		if purpose == "" {
			purpose = "contract performance"
		}
		gdpr, err := o.monitor.ValidateGDPRCompliance(ctx, compliance.GDPRInput{
			CustomerID:            in.CustomerID,
			ConsentGiven:          in.ConsentGiven,
			DataProcessingPurpose: purpose,
			RetentionPeriodDays:   in.RetentionPeriodDays,
		})
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "gdpr validation")
		}
		if !gdpr.Compliant {
			for _, issue := range gdpr.Issues {
				result.Warnings = append(result.Warnings, "GDPR: "+issue)
			}
		}
	}
	return nil
}

// applyTax computes tax on the converted amount. An unavailable tax
// service degrades in place: the payment continues with manual review
// flagged, zero tax, and the original amount as the settlement amount.
func (o *Orchestrator) applyTax(ctx context.Context, in Input, conversion currency.ConversionResult, result *Result) {
	ctx, span := o.tracer.Start(ctx, "payment.tax")
	defer span.End()

	taxResult, err := o.taxEngine.CalculateTax(ctx, tax.Input{
		Amount:          conversion.ConvertedAmount,
		CustomerCountry: in.CustomerCountry,
		CustomerState:   in.CustomerState,
		VATNumber:       in.VATNumber,
		CustomerType:    tax.CustomerType(in.CustomerType),
		ProductCategory: in.ProductCategory,
		TaxNexus:        in.TaxNexus,
	})
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("tax calculation unavailable, degrading to manual review",
				"transaction_id", result.TransactionID, "error", err)
		}
		result.RequiresManualReview = true
		result.TaxAmount = 0
		result.SettlementAmount = in.Amount
		result.Warnings = append(result.Warnings, warnTaxDegraded)
		if o.metrics != nil {
			o.metrics.ManualReviews.Inc()
		}
		return
	}

	result.TaxAmount = taxResult.TaxAmount
	result.TaxRate = taxResult.TaxRate
	result.TaxJurisdiction = taxResult.Jurisdiction
	result.ReverseCharge = taxResult.ReverseCharge
	result.Warnings = append(result.Warnings, taxResult.Warnings...)
}

func (o *Orchestrator) capture(ctx context.Context, in Input, result Result) (clients.CaptureResult, error) {
	ctx, span := o.tracer.Start(ctx, "payment.capture")
	defer span.End()

	req := clients.CaptureRequest{
		Amount:           result.SettlementAmount + result.TaxAmount,
		Currency:         result.SettlementCurrency,
		CustomerRef:      in.CustomerID,
		PaymentMethodRef: in.PaymentMethodRef,
		Metadata: map[string]string{
			"transaction_id":    result.TransactionID,
			"idempotency_key":   result.TransactionID,
			"original_amount":   fmt.Sprintf("%d", result.OriginalAmount),
			"original_currency": result.OriginalCurrency,
			"exchange_rate":     fmt.Sprintf("%g", result.ExchangeRate),
			"tax_jurisdiction":  result.TaxJurisdiction,
		},
	}
	if result.SettlementCurrency == "" {
		req.Currency = in.Currency
	}

	// Timeouts and outages get the bounded retry budget; the gateway
	// dedupes on the idempotency key, so a retried timeout cannot
	// capture twice. Declines are definitive and surface immediately.
	var capture clients.CaptureResult
	err := retry.Do(ctx, o.policy, clients.IsRetryable, func(ctx context.Context) error {
		var callErr error
		capture, callErr = o.gateway.Capture(ctx, req)
		return callErr
	})
	if err != nil {
		return clients.CaptureResult{}, dErrors.Wrap(err, dErrors.CodeGateway, "payment capture")
	}
	return capture, nil
}

// finish persists the record and emits the audit event. Both are
// best-effort: a captured payment's success is never unwound by a
// persistence problem, and cancellation no longer applies.
func (o *Orchestrator) finish(ctx context.Context, in Input, result Result) {
	ctx = context.WithoutCancel(ctx)

	if err := o.records.Save(ctx, result); err != nil {
		if o.logger != nil {
			o.logger.Error("payment record persistence failed after capture",
				"transaction_id", result.TransactionID, "error", err)
		}
	}

	o.recorder.Record(audit.Event{
		EventType:  audit.EventPaymentProcessed,
		EntityType: "transaction",
		EntityID:   result.TransactionID,
		Rule:       "payment_pipeline",
		Status:     audit.StatusPassed,
		Details: map[string]any{
			"customer_id":       in.CustomerID,
			"settlement_amount": result.SettlementAmount,
			"tax_amount":        result.TaxAmount,
			"manual_review":     result.RequiresManualReview,
		},
	})
}

func (o *Orchestrator) block(ctx context.Context, result Result, err error) (Result, error) {
	result.State = StateBlocked
	result.Error = err.Error()

	o.recorder.Record(audit.Event{
		EventType:  audit.EventPaymentBlocked,
		EntityType: "transaction",
		EntityID:   result.TransactionID,
		Rule:       result.ComplianceStatus,
		Status:     audit.StatusFailed,
		Details:    map[string]any{"reason": err.Error()},
	})
	if o.metrics != nil {
		o.metrics.PaymentsBlocked.WithLabelValues(result.ComplianceStatus).Inc()
	}
	if o.logger != nil {
		o.logger.Warn("payment blocked",
			"transaction_id", result.TransactionID,
			"reason", result.ComplianceStatus)
	}
	return result, err
}

func (o *Orchestrator) fail(ctx context.Context, result Result, err error) (Result, error) {
	failedAt := result.State
	result.State = StateFailed
	result.Error = err.Error()

	o.recorder.Record(audit.Event{
		EventType:  audit.EventPaymentFailed,
		EntityType: "transaction",
		EntityID:   result.TransactionID,
		Rule:       "payment_pipeline",
		Status:     audit.StatusFailed,
		Details:    map[string]any{"error": err.Error(), "failed_at": string(failedAt)},
	})
	if o.metrics != nil {
		o.metrics.PaymentsProcessed.WithLabelValues(string(StateFailed)).Inc()
	}
	return result, err
}
