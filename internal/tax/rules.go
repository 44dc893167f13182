package tax

import "math"

// This file is pure domain logic - no I/O, no side effects. The engine
// gathers jurisdiction, rate, and VAT validation evidence, then these
// rules decide the outcome.

// euMembers is the EU membership set used for reverse-charge and MOSS
// decisions.
var euMembers = map[string]bool{
	"AT": true, "BE": true, "BG": true, "HR": true, "CY": true, "CZ": true,
	"DK": true, "EE": true, "FI": true, "FR": true, "DE": true, "GR": true,
	"HU": true, "IE": true, "IT": true, "LV": true, "LT": true, "LU": true,
	"MT": true, "NL": true, "PL": true, "PT": true, "RO": true, "SK": true,
	"SI": true, "ES": true, "SE": true,
}

// IsEUMember reports EU membership for an ISO 3166 alpha-2 code.
func IsEUMember(country string) bool {
	return euMembers[country]
}

// digitalCategories are product categories subject to the EU digital
// services regime (and its registration threshold).
var digitalCategories = map[string]bool{
	"digital_services": true,
	"software":         true,
	"saas":             true,
	"ebooks":           true,
	"streaming":        true,
}

// IsDigitalCategory reports whether the category is a digital service.
func IsDigitalCategory(category string) bool {
	return digitalCategories[category]
}

// noSalesTaxStates are US states with no state sales tax.
var noSalesTaxStates = map[string]bool{
	"DE": true, // Delaware
	"MT": true, // Montana
	"NH": true, // New Hampshire
	"OR": true, // Oregon
}

// reverseChargeInput is the evidence needed for the reverse-charge rule.
type reverseChargeInput struct {
	jurisdiction    Jurisdiction
	customerCountry string
	customerType    CustomerType
	vatNumber       string
	vatValid        bool
}

// reverseChargeApplies implements the full conjunction: the jurisdiction
// allows it, the buyer is a registered business with a validated VAT
// number, and buyer and jurisdiction are distinct EU countries.
func reverseChargeApplies(in reverseChargeInput) bool {
	return in.jurisdiction.ReverseChargeApplicable &&
		in.customerType == CustomerBusiness &&
		in.vatNumber != "" &&
		IsEUMember(in.customerCountry) &&
		IsEUMember(in.jurisdiction.Country()) &&
		in.customerCountry != in.jurisdiction.Country() &&
		in.vatValid
}

// exemption reasons reported in Result.ExemptionReason.
const (
	exemptionDigitalThreshold = "Below digital services threshold"
	exemptionNoNexus          = "No sales tax nexus"
)

// exemptionReason returns the applicable exemption, or "".
func exemptionReason(jurisdiction Jurisdiction, category string, amount int64, customerState string) string {
	if IsDigitalCategory(category) && jurisdiction.ThresholdAmount > 0 && amount < jurisdiction.ThresholdAmount {
		return exemptionDigitalThreshold
	}
	if jurisdiction.TaxSystem == SystemSalesTax && customerState != "" {
		if noSalesTaxStates[customerState] || jurisdiction.DefaultRate == 0 {
			return exemptionNoNexus
		}
	}
	return ""
}

// computeTaxAmount applies the rate to the taxable amount. Percentage
// rates round to the nearest minor unit; fixed rates are a flat charge
// expressed in minor units.
func computeTaxAmount(rate Rate, amount int64) int64 {
	switch rate.RateType {
	case RateFixed:
		return int64(math.Round(rate.Rate))
	default:
		return int64(math.Round(float64(amount) * rate.Rate))
	}
}
