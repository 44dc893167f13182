package httptransport

import (
	"context"
	"time"

	"crosspay/internal/compliance"
	"crosspay/internal/payment"
	"crosspay/internal/tax"
)

// Narrow service interfaces declared at the point of use so tests can
// stub each concern independently.

// PaymentService runs the payment pipeline.
type PaymentService interface {
	ProcessInternationalPayment(ctx context.Context, in payment.Input) (payment.Result, error)
	ProcessRegionalPayment(ctx context.Context, in payment.RegionalInput) (payment.Result, error)
	ProcessBatch(ctx context.Context, inputs []payment.Input) []payment.Result
}

// TaxService calculates tax treatment.
type TaxService interface {
	CalculateTax(ctx context.Context, in tax.Input) (tax.Result, error)
}

// InvoiceService issues tax invoices.
type InvoiceService interface {
	GenerateTaxInvoice(ctx context.Context, invoice tax.Invoice) (string, error)
}

// ComplianceService runs individual compliance checks.
type ComplianceService interface {
	PerformKYCCheck(ctx context.Context, in compliance.KYCInput) (compliance.KYCResult, error)
	CheckSanctionsList(ctx context.Context, in compliance.SanctionsInput) (compliance.SanctionsResult, error)
	ValidateGDPRCompliance(ctx context.Context, in compliance.GDPRInput) (compliance.GDPRResult, error)
}

// ReportService aggregates compliance reports.
type ReportService interface {
	GenerateComplianceReport(ctx context.Context, reportType, jurisdiction string, periodStart, periodEnd time.Time) (compliance.Report, error)
}

// TokenIssuer mints access tokens for authenticated clients.
type TokenIssuer interface {
	Authenticate(clientID, clientSecret string) (roles []string, err error)
	Issue(subject string, roles []string) (string, error)
}
