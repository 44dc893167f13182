package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// RateSource is the narrow interface the currency converter depends on.
type RateSource interface {
	GetRate(ctx context.Context, from, to string) (RateQuote, error)
}

// RateQuote is one exchange-rate observation.
type RateQuote struct {
	Rate     float64   `json:"rate"`
	AsOf     time.Time `json:"as_of"`
	Provider string    `json:"provider"`
}

// HTTPRateSource fetches rates from the configured provider's JSON API.
type HTTPRateSource struct {
	baseURL  string
	provider string
	http     *http.Client
}

// NewHTTPRateSource builds a client for the provider at baseURL.
func NewHTTPRateSource(baseURL, provider string) *HTTPRateSource {
	return &HTTPRateSource{
		baseURL:  baseURL,
		provider: provider,
		http:     &http.Client{Timeout: 5 * time.Second},
	}
}

const ratesTarget = "rate_source"

type rateResponse struct {
	Rate float64   `json:"rate"`
	AsOf time.Time `json:"as_of"`
}

// GetRate fetches the from→to rate.
func (s *HTTPRateSource) GetRate(ctx context.Context, from, to string) (RateQuote, error) {
	endpoint := fmt.Sprintf("%s/rates?%s", s.baseURL, url.Values{
		"from": {from},
		"to":   {to},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return RateQuote{}, NewClientError(ErrorInternal, ratesTarget, "build request", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return RateQuote{}, NewClientError(ErrorTimeout, ratesTarget, "rate source timed out", err)
		}
		return RateQuote{}, NewClientError(ErrorOutage, ratesTarget, "rate source unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return RateQuote{}, NewClientError(ErrorRejected, ratesTarget,
			fmt.Sprintf("unsupported pair %s/%s", from, to), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return RateQuote{}, NewClientError(ErrorRateLimited, ratesTarget, "rate source throttling", nil)
	case resp.StatusCode >= 500:
		return RateQuote{}, NewClientError(ErrorOutage, ratesTarget,
			fmt.Sprintf("rate source returned %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return RateQuote{}, NewClientError(ErrorBadData, ratesTarget,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return RateQuote{}, NewClientError(ErrorBadData, ratesTarget, "malformed rate response", err)
	}
	if body.Rate <= 0 {
		return RateQuote{}, NewClientError(ErrorBadData, ratesTarget,
			fmt.Sprintf("non-positive rate %f", body.Rate), nil)
	}

	return RateQuote{Rate: body.Rate, AsOf: body.AsOf, Provider: s.provider}, nil
}
