// Package currency converts amounts between ISO-4217 currencies using a
// cached exchange-rate source and computes conversion fees.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"crosspay/internal/clients"
	"crosspay/internal/platform/cache"
	dErrors "crosspay/pkg/domain-errors"
	"crosspay/pkg/platform/retry"
)

// defaultFeeBasisPoints is the conversion fee applied to non-identity
// conversions: 50 bps of the converted amount, floored at one minor unit.
const defaultFeeBasisPoints = 50

// Service is the currency converter.
type Service struct {
	source clients.RateSource
	rates  *cache.Loader
	policy retry.Policy
	logger *slog.Logger
	feeBps int64
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithRetryPolicy overrides the external-call retry policy.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(s *Service) { s.policy = policy }
}

// WithFeeBasisPoints overrides the conversion fee.
func WithFeeBasisPoints(bps int64) Option {
	return func(s *Service) { s.feeBps = bps }
}

// New constructs a converter. rates should be a Loader over a short-TTL
// store: exchange rates move within minutes, not hours.
func New(source clients.RateSource, rates *cache.Loader, opts ...Option) *Service {
	s := &Service{
		source: source,
		rates:  rates,
		policy: retry.DefaultPolicy(),
		feeBps: defaultFeeBasisPoints,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert converts amount (positive, minor units) from one currency to
// another. Identity conversions short-circuit without an external call.
// No rate means no conversion: the error is fatal to the enclosing
// transaction, there is no silent fallback.
func (s *Service) Convert(ctx context.Context, amount int64, from, to string) (ConversionResult, error) {
	if amount <= 0 {
		return ConversionResult{}, dErrors.Newf(dErrors.CodeValidation, "amount must be positive, got %d", amount)
	}
	if len(from) != 3 || len(to) != 3 {
		return ConversionResult{}, dErrors.New(dErrors.CodeValidation, "currency codes must be 3 letters")
	}

	if from == to {
		return ConversionResult{
			OriginalAmount:  amount,
			ConvertedAmount: amount,
			FromCurrency:    from,
			ToCurrency:      to,
			ExchangeRate:    1,
			Fees:            0,
		}, nil
	}

	quote, err := s.rate(ctx, from, to)
	if err != nil {
		return ConversionResult{}, dErrors.Wrap(err, dErrors.CodeConversionFailed,
			fmt.Sprintf("no exchange rate for %s/%s", from, to))
	}

	converted := int64(math.Round(float64(amount) * quote.Rate))
	return ConversionResult{
		OriginalAmount:  amount,
		ConvertedAmount: converted,
		FromCurrency:    from,
		ToCurrency:      to,
		ExchangeRate:    quote.Rate,
		Fees:            s.fee(converted),
		RateProvider:    quote.Provider,
		RateAsOf:        quote.AsOf,
	}, nil
}

func (s *Service) rate(ctx context.Context, from, to string) (clients.RateQuote, error) {
	key := from + ":" + to

	raw, hit, err := s.rates.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		var quote clients.RateQuote
		err := retry.Do(ctx, s.policy, clients.IsRetryable, func(ctx context.Context) error {
			var callErr error
			quote, callErr = s.source.GetRate(ctx, from, to)
			return callErr
		})
		if err != nil {
			return nil, err
		}
		return json.Marshal(quote)
	})
	if err != nil {
		return clients.RateQuote{}, err
	}
	if hit && s.logger != nil {
		s.logger.Debug("exchange rate served from cache", "pair", key)
	}

	var quote clients.RateQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		// A corrupt cache entry must not poison conversions.
		_ = s.rates.Invalidate(ctx, key)
		return clients.RateQuote{}, fmt.Errorf("decode cached rate: %w", err)
	}
	return quote, nil
}

func (s *Service) fee(converted int64) int64 {
	if s.feeBps <= 0 {
		return 0
	}
	fee := int64(math.Round(float64(converted) * float64(s.feeBps) / 10000))
	if fee < 1 {
		fee = 1
	}
	return fee
}

// RateTTL is re-exported for wiring so main builds the loader with the
// converter's intended freshness.
const RateTTL = 5 * time.Minute
