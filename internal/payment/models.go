// Package payment sequences compliance screening, currency conversion,
// tax calculation, and gateway capture into one transaction pipeline.
package payment

import "time"

// State tracks a transaction through the pipeline. Transitions are
// strictly forward; blocked and failed are terminal.
type State string

const (
	StateValidating         State = "validating"
	StateComplianceChecking State = "compliance_checking"
	StateConverting         State = "converting"
	StateTaxing             State = "taxing"
	StateCapturing          State = "capturing"
	StatePersisted          State = "persisted"
	StateBlocked            State = "blocked"
	StateFailed             State = "failed"
)

// supportedCurrencies is the set of currencies the engine settles or
// accepts. Payments in anything else fail before any external call.
var supportedCurrencies = map[string]bool{
	"EUR": true, "USD": true, "GBP": true, "CHF": true,
	"AUD": true, "CAD": true, "JPY": true, "SEK": true,
	"NOK": true, "DKK": true, "PLN": true,
}

// IsSupportedCurrency reports membership of the supported set.
func IsSupportedCurrency(code string) bool {
	return supportedCurrencies[code]
}

// Input is the typed boundary struct for one international payment.
type Input struct {
	// Amount is in minor units of Currency.
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`

	CustomerID      string `json:"customer_id"`
	CustomerName    string `json:"customer_name,omitempty"`
	CustomerCountry string `json:"customer_country"`
	CustomerState   string `json:"customer_state,omitempty"`
	CustomerType    string `json:"customer_type"`
	BusinessName    string `json:"business_name,omitempty"`

	VATNumber       string   `json:"vat_number,omitempty"`
	ProductCategory string   `json:"product_category,omitempty"`
	TaxNexus        []string `json:"tax_nexus,omitempty"`

	PaymentMethodRef string `json:"payment_method_ref"`

	// DocumentType and DocumentNumber feed KYC document verification.
	DocumentType   string `json:"document_type,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`

	// ConsentGiven and DataProcessingPurpose feed the GDPR check for EU
	// customers. Purpose defaults to contract performance.
	ConsentGiven          *bool  `json:"consent_given,omitempty"`
	DataProcessingPurpose string `json:"data_processing_purpose,omitempty"`
	RetentionPeriodDays   int    `json:"retention_period_days,omitempty"`
}

// RegionalInput adds a named regional payment method to a payment.
type RegionalInput struct {
	Input
	Method    string `json:"method"`
	MandateID string `json:"mandate_id,omitempty"`
}

// Result is the terminal record of one transaction attempt. Created once
// per transaction and never mutated; corrections require a compensating
// record.
type Result struct {
	TransactionID string `json:"transaction_id"`
	Success       bool   `json:"success"`
	State         State  `json:"state"`

	OriginalAmount   int64  `json:"original_amount"`
	OriginalCurrency string `json:"original_currency"`

	SettlementAmount   int64   `json:"settlement_amount"`
	SettlementCurrency string  `json:"settlement_currency"`
	ExchangeRate       float64 `json:"exchange_rate"`
	ConversionFees     int64   `json:"conversion_fees"`

	// Rate provenance, kept for regulatory traceability.
	RateProvider string    `json:"rate_provider,omitempty"`
	RateAsOf     time.Time `json:"rate_as_of,omitempty"`

	TaxAmount       int64   `json:"tax_amount"`
	TaxRate         float64 `json:"tax_rate"`
	TaxJurisdiction string  `json:"tax_jurisdiction,omitempty"`
	ReverseCharge   bool    `json:"reverse_charge,omitempty"`

	ComplianceStatus     string   `json:"compliance_status"`
	RequiresManualReview bool     `json:"requires_manual_review"`
	Warnings             []string `json:"warnings,omitempty"`

	GatewayTransactionID string `json:"gateway_transaction_id,omitempty"`

	// Method fields are set for regional payments.
	Method         string `json:"method,omitempty"`
	ProcessingTime string `json:"processing_time,omitempty"`

	// Error carries the failure description for batch entries.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
