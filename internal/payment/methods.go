package payment

import (
	"slices"

	dErrors "crosspay/pkg/domain-errors"
)

// Method describes one regional payment scheme. Static configuration:
// the registry ships with the binary and changes with releases.
type Method struct {
	Name            string   `json:"name"`
	Regions         []string `json:"regions"`
	Currencies      []string `json:"currencies"`
	ProcessingTime  string   `json:"processing_time"`
	RequiresMandate bool     `json:"requires_mandate"`
}

var sepaRegions = []string{
	"AT", "BE", "BG", "HR", "CY", "CZ", "DK", "EE", "FI", "FR", "DE", "GR",
	"HU", "IE", "IT", "LV", "LT", "LU", "MT", "NL", "PL", "PT", "RO", "SK",
	"SI", "ES", "SE", "NO", "IS", "LI", "CH", "GB",
}

var methodRegistry = map[string]Method{
	"sepa_debit": {
		Name:            "sepa_debit",
		Regions:         sepaRegions,
		Currencies:      []string{"EUR"},
		ProcessingTime:  "1-2 business days",
		RequiresMandate: true,
	},
	"ach_debit": {
		Name:            "ach_debit",
		Regions:         []string{"US"},
		Currencies:      []string{"USD"},
		ProcessingTime:  "3-5 business days",
		RequiresMandate: true,
	},
	"bacs_debit": {
		Name:            "bacs_debit",
		Regions:         []string{"GB"},
		Currencies:      []string{"GBP"},
		ProcessingTime:  "2-3 business days",
		RequiresMandate: true,
	},
	"becs_debit": {
		Name:            "becs_debit",
		Regions:         []string{"AU"},
		Currencies:      []string{"AUD"},
		ProcessingTime:  "2-3 business days",
		RequiresMandate: true,
	},
	"ideal": {
		Name:            "ideal",
		Regions:         []string{"NL"},
		Currencies:      []string{"EUR"},
		ProcessingTime:  "instant",
		RequiresMandate: false,
	},
	"card": {
		Name:            "card",
		Regions:         nil, // global
		Currencies:      []string{"EUR", "USD", "GBP", "CHF", "AUD", "CAD", "JPY", "SEK", "NOK", "DKK", "PLN"},
		ProcessingTime:  "instant",
		RequiresMandate: false,
	},
}

// LookupMethod returns the named method's configuration.
func LookupMethod(name string) (Method, bool) {
	method, ok := methodRegistry[name]
	return method, ok
}

// resolveMethod validates that the method exists, covers the customer's
// country and currency, and has a mandate when it needs one.
func resolveMethod(in RegionalInput) (Method, error) {
	method, ok := LookupMethod(in.Method)
	if !ok {
		return Method{}, dErrors.Newf(dErrors.CodeUnsupportedMethod, "unknown payment method %q", in.Method)
	}
	if method.Regions != nil && !slices.Contains(method.Regions, in.CustomerCountry) {
		return Method{}, dErrors.Newf(dErrors.CodeUnsupportedMethod,
			"method %q is not available in %s", method.Name, in.CustomerCountry)
	}
	if !slices.Contains(method.Currencies, in.Currency) {
		return Method{}, dErrors.Newf(dErrors.CodeUnsupportedMethod,
			"method %q does not support %s", method.Name, in.Currency)
	}
	if method.RequiresMandate && in.MandateID == "" {
		return Method{}, dErrors.Newf(dErrors.CodeValidation,
			"method %q requires a mandate id", method.Name)
	}
	return method, nil
}
