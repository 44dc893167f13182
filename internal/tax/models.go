package tax

import "time"

// TaxSystem identifies the consumption-tax regime of a jurisdiction.
type TaxSystem string

const (
	SystemVAT      TaxSystem = "vat"
	SystemGST      TaxSystem = "gst"
	SystemSalesTax TaxSystem = "sales_tax"
)

// RateType distinguishes percentage rates from fixed charges.
type RateType string

const (
	RatePercentage RateType = "percentage"
	RateFixed      RateType = "fixed"
)

// CustomerType distinguishes consumers from registered businesses.
type CustomerType string

const (
	CustomerIndividual CustomerType = "individual"
	CustomerBusiness   CustomerType = "business"
)

// Jurisdiction is immutable reference data describing one taxing
// authority. Codes are ISO 3166 alpha-2, or "COUNTRY-STATE" for
// sub-national jurisdictions (e.g. "US-CA").
type Jurisdiction struct {
	Code                    string
	Name                    string
	TaxSystem               TaxSystem
	DefaultRate             float64
	Currency                string
	// ThresholdAmount, when non-zero, exempts digital-service sales
	// below it (minor units).
	ThresholdAmount         int64
	MOSSEligible            bool
	ReverseChargeApplicable bool
}

// Country returns the country part of the jurisdiction code.
func (j Jurisdiction) Country() string {
	if len(j.Code) >= 2 {
		return j.Code[:2]
	}
	return j.Code
}

// Rate is one effective-dated tax rate for a (jurisdiction, category)
// pair. Ranges for the same pair never overlap; lookup selects the most
// recent range containing the query time.
type Rate struct {
	JurisdictionCode string
	ProductCategory  string
	Rate             float64
	RateType         RateType
	EffectiveFrom    time.Time
	// EffectiveUntil nil means open-ended.
	EffectiveUntil *time.Time
}

// InRange reports whether at falls inside [EffectiveFrom, EffectiveUntil).
func (r Rate) InRange(at time.Time) bool {
	if at.Before(r.EffectiveFrom) {
		return false
	}
	return r.EffectiveUntil == nil || at.Before(*r.EffectiveUntil)
}

// Input is the typed boundary struct for one tax calculation.
type Input struct {
	// Amount is the taxable amount in minor units.
	Amount int64 `json:"amount"`
	// CustomerCountry is ISO 3166 alpha-2.
	CustomerCountry string `json:"customer_country"`
	// CustomerState narrows US customers to a state jurisdiction.
	CustomerState string `json:"customer_state,omitempty"`
	// VATNumber, when present, enables B2B reverse-charge treatment.
	VATNumber    string       `json:"vat_number,omitempty"`
	CustomerType CustomerType `json:"customer_type"`
	// ProductCategory selects the rate row; "standard" when unset.
	ProductCategory string `json:"product_category"`
	// TaxNexus lists the merchant's registered jurisdictions. When set,
	// the merchant-side jurisdiction governs cross-border B2B treatment.
	TaxNexus []string `json:"tax_nexus,omitempty"`
}

// Result is the outcome of one tax calculation.
type Result struct {
	TaxAmount       int64     `json:"tax_amount"`
	TaxRate         float64   `json:"tax_rate"`
	Jurisdiction    string    `json:"jurisdiction"`
	TaxType         TaxSystem `json:"tax_type"`
	ReverseCharge   bool      `json:"reverse_charge"`
	ExemptionReason string    `json:"exemption_reason,omitempty"`
	MOSSEligible    bool      `json:"moss_eligible,omitempty"`
	ApplicableRules []string  `json:"applicable_rules"`
	Warnings        []string  `json:"warnings,omitempty"`
}

// VATValidationSource records which path produced a validation result.
type VATValidationSource string

const (
	SourceRegistry    VATValidationSource = "registry"
	SourceLocalFormat VATValidationSource = "local-format"
	SourceCache       VATValidationSource = "cache"
)

// VATValidationResult is immutable for its cache lifetime.
type VATValidationResult struct {
	Valid       bool                `json:"valid"`
	CompanyName string              `json:"company_name,omitempty"`
	Country     string              `json:"country"`
	VATNumber   string              `json:"vat_number"`
	CheckedAt   time.Time           `json:"checked_at"`
	Source      VATValidationSource `json:"source"`
}

// Rule names recorded in Result.ApplicableRules for audit and tests.
const (
	RuleNoTax           = "no_tax"
	RuleReverseCharge   = "reverse_charge"
	RuleDigitalServices = "digital_services"
)
