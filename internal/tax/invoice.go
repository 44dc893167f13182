package tax

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"

	dErrors "crosspay/pkg/domain-errors"
)

// InvoiceLineItem is one billed position.
type InvoiceLineItem struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	// Amount is the line total in minor units.
	Amount int64 `json:"amount"`
}

// Invoice is the tax invoice document persisted for one charge.
type Invoice struct {
	Number          string            `json:"number"`
	CustomerName    string            `json:"customer_name"`
	CustomerCountry string            `json:"customer_country"`
	CustomerVAT     string            `json:"customer_vat,omitempty"`
	LineItems       []InvoiceLineItem `json:"line_items"`
	Currency        string            `json:"currency"`
	TaxAmount       int64             `json:"tax_amount"`
	TaxRate         float64           `json:"tax_rate"`
	TotalAmount     int64             `json:"total_amount"`
	ReverseCharge   bool              `json:"reverse_charge"`
	IssuedAt        time.Time         `json:"issued_at"`
}

// InvoiceStore persists invoices and allocates per-(year, country)
// sequence numbers.
type InvoiceStore interface {
	// NextSequence returns the next invoice sequence for the year and
	// country, starting at 1. Implementations must be safe under
	// concurrent allocation.
	NextSequence(ctx context.Context, year int, country string) (int64, error)
	Save(ctx context.Context, invoice Invoice) error
	FindByNumber(ctx context.Context, number string) (Invoice, error)
}

// Invoicer issues tax invoices.
type Invoicer struct {
	store  InvoiceStore
	logger *slog.Logger
	now    func() time.Time
}

// NewInvoicer constructs an Invoicer.
func NewInvoicer(store InvoiceStore, logger *slog.Logger) *Invoicer {
	return &Invoicer{store: store, logger: logger, now: time.Now}
}

// GenerateTaxInvoice validates the invoice data, allocates a
// deterministic invoice number of the form INV-<year>-<country>-<seq>,
// and persists the document. Returns the invoice number.
func (i *Invoicer) GenerateTaxInvoice(ctx context.Context, invoice Invoice) (string, error) {
	if err := validateInvoice(invoice); err != nil {
		return "", err
	}

	issuedAt := i.now()
	seq, err := i.store.NextSequence(ctx, issuedAt.Year(), invoice.CustomerCountry)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "allocate invoice sequence")
	}

	invoice.Number = fmt.Sprintf("INV-%d-%s-%06d", issuedAt.Year(), invoice.CustomerCountry, seq)
	invoice.IssuedAt = issuedAt

	if err := i.store.Save(ctx, invoice); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "persist invoice")
	}

	if i.logger != nil {
		i.logger.Info("tax invoice issued",
			"number", invoice.Number,
			"country", invoice.CustomerCountry,
			"total", invoice.TotalAmount)
	}
	return invoice.Number, nil
}

func validateInvoice(invoice Invoice) error {
	if govalidator.IsNull(invoice.CustomerName) {
		return dErrors.New(dErrors.CodeValidation, "customer name is required")
	}
	if !govalidator.IsISO3166Alpha2(invoice.CustomerCountry) {
		return dErrors.New(dErrors.CodeValidation, "customer country must be ISO 3166 alpha-2")
	}
	if len(invoice.LineItems) == 0 {
		return dErrors.New(dErrors.CodeValidation, "invoice requires at least one line item")
	}
	for idx, item := range invoice.LineItems {
		if item.Amount <= 0 || item.Quantity <= 0 {
			return dErrors.Newf(dErrors.CodeValidation, "line item %d must have positive quantity and amount", idx)
		}
	}
	if invoice.TotalAmount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "invoice total must be positive")
	}
	return nil
}
