package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// PaymentGateway is the capture collaborator. This engine only calls it;
// gateway integration (3DS, webhooks, refunds) lives elsewhere.
type PaymentGateway interface {
	Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error)
}

// CaptureRequest carries the settlement amount plus reconciliation
// metadata describing the original currency, amount, and rate.
type CaptureRequest struct {
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	CustomerRef      string            `json:"customer_ref"`
	PaymentMethodRef string            `json:"payment_method_ref"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// CaptureResult is the gateway's acknowledgement.
type CaptureResult struct {
	GatewayTransactionID string `json:"gateway_transaction_id"`
	Status               string `json:"status"`
}

// HTTPGateway talks to the gateway's capture endpoint.
type HTTPGateway struct {
	baseURL string
	http    *http.Client
}

// NewHTTPGateway builds a gateway client.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

const gatewayTarget = "payment_gateway"

// Capture submits one capture. A declined capture is a rejection, not an
// outage: it must never be retried.
func (g *HTTPGateway) Capture(ctx context.Context, captureReq CaptureRequest) (CaptureResult, error) {
	payload, err := json.Marshal(captureReq)
	if err != nil {
		return CaptureResult{}, NewClientError(ErrorInternal, gatewayTarget, "marshal capture", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/captures", bytes.NewReader(payload))
	if err != nil {
		return CaptureResult{}, NewClientError(ErrorInternal, gatewayTarget, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return CaptureResult{}, NewClientError(ErrorTimeout, gatewayTarget, "gateway timed out", err)
		}
		return CaptureResult{}, NewClientError(ErrorOutage, gatewayTarget, "gateway unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusPaymentRequired, resp.StatusCode == http.StatusUnprocessableEntity:
		var rejection struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&rejection)
		return CaptureResult{}, NewClientError(ErrorRejected, gatewayTarget,
			fmt.Sprintf("capture declined: %s", rejection.Reason), nil)
	case resp.StatusCode >= 500:
		return CaptureResult{}, NewClientError(ErrorOutage, gatewayTarget,
			fmt.Sprintf("gateway returned %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return CaptureResult{}, NewClientError(ErrorBadData, gatewayTarget,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var result CaptureResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return CaptureResult{}, NewClientError(ErrorBadData, gatewayTarget, "malformed capture response", err)
	}
	if result.GatewayTransactionID == "" {
		return CaptureResult{}, NewClientError(ErrorBadData, gatewayTarget, "capture response missing transaction id", nil)
	}
	return result, nil
}
