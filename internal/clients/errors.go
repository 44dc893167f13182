// Package clients holds the outbound integrations: the VIES VAT registry,
// the exchange-rate source, and the payment gateway. Every failure is
// normalized into a ClientError so callers can tell a retryable network
// problem from a definitive rejection.
package clients

import (
	"errors"
	"fmt"
)

// ErrorCategory defines the normalized failure taxonomy.
type ErrorCategory string

const (
	// ErrorTimeout indicates the collaborator took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the collaborator returned invalid/malformed data.
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorOutage indicates the collaborator is unavailable.
	ErrorOutage ErrorCategory = "outage"

	// ErrorRejected indicates a definitive rejection (declined capture,
	// unsupported pair). Never retried.
	ErrorRejected ErrorCategory = "rejected"

	// ErrorRateLimited indicates too many requests.
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorInternal indicates an unexpected internal error.
	ErrorInternal ErrorCategory = "internal"
)

// ClientError wraps collaborator failures with normalized categorization.
type ClientError struct {
	Category   ErrorCategory
	Target     string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *ClientError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Target, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Target, e.Category, e.Message)
}

func (e *ClientError) Unwrap() error {
	return e.Underlying
}

// NewClientError creates a normalized collaborator error. Timeouts,
// outages, and rate limiting are worth retrying; rejections and bad data
// are not.
func NewClientError(category ErrorCategory, target, message string, underlying error) *ClientError {
	retryable := category == ErrorTimeout ||
		category == ErrorOutage ||
		category == ErrorRateLimited

	return &ClientError{
		Category:   category,
		Target:     target,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Retryable
	}
	return false
}

// CategoryOf extracts the error category from an error.
func CategoryOf(err error) ErrorCategory {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Category
	}
	return ErrorInternal
}
