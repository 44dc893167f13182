package tax

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"crosspay/internal/clients"
	"crosspay/internal/platform/cache"
	"crosspay/pkg/platform/circuit"
	"crosspay/pkg/platform/retry"
)

// vatFormats holds per-country VAT number body formats (country prefix
// already stripped). Used for non-EU countries and as the fallback when
// the registry is unreachable.
var vatFormats = map[string]*regexp.Regexp{
	"AT": regexp.MustCompile(`^U\d{8}$`),
	"BE": regexp.MustCompile(`^[01]?\d{9}$`),
	"BG": regexp.MustCompile(`^\d{9,10}$`),
	"CY": regexp.MustCompile(`^\d{8}[A-Z]$`),
	"CZ": regexp.MustCompile(`^\d{8,10}$`),
	"DE": regexp.MustCompile(`^\d{9}$`),
	"DK": regexp.MustCompile(`^\d{8}$`),
	"EE": regexp.MustCompile(`^\d{9}$`),
	"ES": regexp.MustCompile(`^[A-Z0-9]\d{7}[A-Z0-9]$`),
	"FI": regexp.MustCompile(`^\d{8}$`),
	"FR": regexp.MustCompile(`^[A-Z0-9]{2}\d{9}$`),
	"GB": regexp.MustCompile(`^(\d{9}|\d{12})$`),
	"GR": regexp.MustCompile(`^\d{9}$`),
	"HR": regexp.MustCompile(`^\d{11}$`),
	"HU": regexp.MustCompile(`^\d{8}$`),
	"IE": regexp.MustCompile(`^\d{7}[A-Z]{1,2}$|^\d[A-Z0-9+*]\d{5}[A-Z]$`),
	"IT": regexp.MustCompile(`^\d{11}$`),
	"LT": regexp.MustCompile(`^(\d{9}|\d{12})$`),
	"LU": regexp.MustCompile(`^\d{8}$`),
	"LV": regexp.MustCompile(`^\d{11}$`),
	"MT": regexp.MustCompile(`^\d{8}$`),
	"NL": regexp.MustCompile(`^\d{9}B\d{2}$`),
	"PL": regexp.MustCompile(`^\d{10}$`),
	"PT": regexp.MustCompile(`^\d{9}$`),
	"RO": regexp.MustCompile(`^\d{2,10}$`),
	"SE": regexp.MustCompile(`^\d{12}$`),
	"SI": regexp.MustCompile(`^\d{8}$`),
	"SK": regexp.MustCompile(`^\d{10}$`),
	"AU": regexp.MustCompile(`^\d{11}$`), // ABN
	"CA": regexp.MustCompile(`^\d{9}$`),  // BN
	"CH": regexp.MustCompile(`^\d{9}$`),
}

// NormalizeVATNumber strips spaces, dashes and dots and uppercases.
func NormalizeVATNumber(raw string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(raw)
	return strings.ToUpper(cleaned)
}

// splitVAT separates an optional country prefix from the number body.
func splitVAT(normalized, declaredCountry string) (country, body string) {
	country = strings.ToUpper(declaredCountry)
	body = normalized
	if len(normalized) > 2 {
		prefix := normalized[:2]
		if _, known := vatFormats[prefix]; known || IsEUMember(prefix) {
			body = normalized[2:]
			if country == "" {
				country = prefix
			}
		}
	}
	return country, body
}

// VATValidator validates VAT registration numbers, preferring the VIES
// registry for EU countries and falling back to local format checks when
// the registry is down or the country is outside the EU.
type VATValidator struct {
	registry clients.VATValidator
	results  *cache.Loader
	breaker  *circuit.Breaker
	policy   retry.Policy
	logger   *slog.Logger
	now      func() time.Time
}

// VATValidatorOption configures the validator.
type VATValidatorOption func(*VATValidator)

// WithVATLogger sets the logger.
func WithVATLogger(logger *slog.Logger) VATValidatorOption {
	return func(v *VATValidator) { v.logger = logger }
}

// WithVATRetryPolicy overrides the registry retry policy.
func WithVATRetryPolicy(policy retry.Policy) VATValidatorOption {
	return func(v *VATValidator) { v.policy = policy }
}

// WithVATBreaker replaces the registry circuit breaker, tuning the
// failure threshold and cooldown.
func WithVATBreaker(breaker *circuit.Breaker) VATValidatorOption {
	return func(v *VATValidator) { v.breaker = breaker }
}

// NewVATValidator constructs a validator. results should be a Loader over
// a 24h-TTL store keyed by (normalized number, country).
func NewVATValidator(registry clients.VATValidator, results *cache.Loader, opts ...VATValidatorOption) *VATValidator {
	v := &VATValidator{
		registry: registry,
		results:  results,
		breaker:  circuit.New("vies", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(2)),
		policy:   retry.DefaultPolicy(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks one VAT number. The returned result's Source reports
// whether the registry, the local format check, or the cache answered.
func (v *VATValidator) Validate(ctx context.Context, rawNumber, declaredCountry string) (VATValidationResult, error) {
	normalized := NormalizeVATNumber(rawNumber)
	country, body := splitVAT(normalized, declaredCountry)

	key := normalized + ":" + country
	raw, hit, err := v.results.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		result := v.check(ctx, country, body, normalized)
		return json.Marshal(result)
	})
	if err != nil {
		return VATValidationResult{}, err
	}

	var result VATValidationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		_ = v.results.Invalidate(ctx, key)
		return VATValidationResult{}, err
	}
	if hit {
		result.Source = SourceCache
	}
	return result, nil
}

// check performs the uncached validation. Registry failure is not an
// error: the local format check answers instead, so a VIES outage can
// never block an otherwise-valid payment.
func (v *VATValidator) check(ctx context.Context, country, body, normalized string) VATValidationResult {
	result := VATValidationResult{
		Country:   country,
		VATNumber: normalized,
		CheckedAt: v.now(),
	}

	if IsEUMember(country) && !v.breaker.IsOpen() {
		var registryResult clients.VATRegistryResult
		err := retry.Do(ctx, v.policy, clients.IsRetryable, func(ctx context.Context) error {
			var callErr error
			registryResult, callErr = v.registry.Validate(ctx, country, body)
			return callErr
		})
		if err == nil {
			v.breaker.RecordSuccess()
			result.Valid = registryResult.Valid
			result.CompanyName = registryResult.CompanyName
			result.Source = SourceRegistry
			return result
		}

		if _, change := v.breaker.RecordFailure(); change.Opened && v.logger != nil {
			v.logger.Warn("vies breaker opened, falling back to format validation")
		}
		if v.logger != nil {
			v.logger.Warn("vies lookup failed, using local format check",
				"country", country, "error", err)
		}
	}

	result.Valid = matchesLocalFormat(country, body)
	result.Source = SourceLocalFormat
	return result
}

func matchesLocalFormat(country, body string) bool {
	format, ok := vatFormats[country]
	if !ok {
		// Unknown country: accept anything that looks like a VAT body.
		return len(body) >= 4 && len(body) <= 14
	}
	return format.MatchString(body)
}
