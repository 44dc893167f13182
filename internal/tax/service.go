// Package tax resolves tax jurisdictions and rates for cross-border
// charges, applies reverse-charge and exemption rules, validates VAT
// registration numbers, and issues tax invoices.
package tax

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	dErrors "crosspay/pkg/domain-errors"
	pstrings "crosspay/pkg/platform/strings"
)

// Engine is the tax compliance engine.
type Engine struct {
	ref    ReferenceStore
	vat    *VATValidator
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine constructs the tax engine.
func NewEngine(ref ReferenceStore, vat *VATValidator, opts ...EngineOption) *Engine {
	e := &Engine{ref: ref, vat: vat, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateTax resolves the jurisdiction and rate for the input and
// applies reverse-charge and exemption rules. Missing reference data is a
// valid "no obligation" outcome, not an error; infrastructure failures
// return CodeTaxUnavailable so the orchestrator can degrade to manual
// review instead of failing the payment.
func (e *Engine) CalculateTax(ctx context.Context, in Input) (Result, error) {
	if in.Amount <= 0 {
		return Result{}, dErrors.Newf(dErrors.CodeValidation, "amount must be positive, got %d", in.Amount)
	}
	if len(in.CustomerCountry) != 2 {
		return Result{}, dErrors.New(dErrors.CodeValidation, "customer country must be ISO 3166 alpha-2")
	}
	if in.ProductCategory == "" {
		in.ProductCategory = "standard"
	}
	if in.CustomerType == "" {
		in.CustomerType = CustomerIndividual
	}

	jurisdiction, found, err := e.resolveJurisdiction(ctx, in)
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeTaxUnavailable, "jurisdiction lookup failed")
	}
	if !found {
		return noTaxResult(), nil
	}

	rate, err := e.ref.FindRate(ctx, jurisdiction.Code, in.ProductCategory, e.now())
	if errors.Is(err, ErrNotFound) {
		return noTaxResult(), nil
	}
	if err != nil {
		return Result{}, dErrors.Wrap(err, dErrors.CodeTaxUnavailable, "rate lookup failed")
	}

	result := Result{
		TaxRate:      rate.Rate,
		Jurisdiction: jurisdiction.Code,
		TaxType:      jurisdiction.TaxSystem,
		MOSSEligible: jurisdiction.MOSSEligible && IsDigitalCategory(in.ProductCategory),
		ApplicableRules: []string{
			fmt.Sprintf("%s_calculation", jurisdiction.TaxSystem),
			fmt.Sprintf("product_category_%s", in.ProductCategory),
		},
	}
	if IsDigitalCategory(in.ProductCategory) {
		result.ApplicableRules = append(result.ApplicableRules, RuleDigitalServices)
	}

	// Exemptions are checked before any tax is computed.
	if reason := exemptionReason(jurisdiction, in.ProductCategory, in.Amount, in.CustomerState); reason != "" {
		result.ExemptionReason = reason
		return result, nil
	}

	// Reverse charge needs a validated VAT number; validation only runs
	// when the cheaper conditions already hold.
	if e.reverseChargeCandidate(jurisdiction, in) {
		vatValid, warning := e.validateVAT(ctx, in)
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if reverseChargeApplies(reverseChargeInput{
			jurisdiction:    jurisdiction,
			customerCountry: in.CustomerCountry,
			customerType:    in.CustomerType,
			vatNumber:       in.VATNumber,
			vatValid:        vatValid,
		}) {
			// Tax shifts to the buyer; the nominal rate stays on the
			// result for transparency.
			result.ReverseCharge = true
			result.ApplicableRules = append(result.ApplicableRules, RuleReverseCharge)
			return result, nil
		}
	}

	result.TaxAmount = computeTaxAmount(rate, in.Amount)
	return result, nil
}

// resolveJurisdiction picks the taxing jurisdiction. Merchant nexus, when
// declared, takes precedence: cross-border B2B treatment is governed by
// where the merchant is registered, not where the buyer sits. US
// customers resolve state-first with a country-level fallback.
func (e *Engine) resolveJurisdiction(ctx context.Context, in Input) (Jurisdiction, bool, error) {
	var codes []string
	codes = append(codes, in.TaxNexus...)
	if in.CustomerCountry == "US" && in.CustomerState != "" {
		codes = append(codes, "US-"+in.CustomerState)
	}
	codes = append(codes, in.CustomerCountry)
	codes = pstrings.DedupeAndTrimUpper(codes)

	for _, code := range codes {
		jurisdiction, err := e.ref.FindJurisdiction(ctx, code)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return Jurisdiction{}, false, err
		}
		return jurisdiction, true, nil
	}
	return Jurisdiction{}, false, nil
}

func (e *Engine) reverseChargeCandidate(jurisdiction Jurisdiction, in Input) bool {
	return jurisdiction.ReverseChargeApplicable &&
		in.CustomerType == CustomerBusiness &&
		in.VATNumber != "" &&
		IsEUMember(in.CustomerCountry) &&
		IsEUMember(jurisdiction.Country()) &&
		in.CustomerCountry != jurisdiction.Country()
}

func (e *Engine) validateVAT(ctx context.Context, in Input) (valid bool, warning string) {
	result, err := e.vat.Validate(ctx, in.VATNumber, in.CustomerCountry)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("vat validation errored, reverse charge withheld",
				"vat_number", NormalizeVATNumber(in.VATNumber), "error", err)
		}
		return false, "VAT validation unavailable - standard rate applied"
	}
	return result.Valid, ""
}

func noTaxResult() Result {
	return Result{ApplicableRules: []string{RuleNoTax}}
}
