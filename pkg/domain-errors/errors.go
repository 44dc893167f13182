// Package domainerrors provides coded errors that carry enough
// classification for transport layers to map them to responses and for
// the orchestrator to decide whether a failure is fatal, retryable, or
// a degrade-in-place condition.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	CodeValidation          Code = "validation"
	CodeNotFound            Code = "not_found"
	CodeConflict            Code = "conflict"
	CodeInternal            Code = "internal"
	CodeTimeout             Code = "timeout"
	CodeUnavailable         Code = "unavailable"
	CodeUnauthorized        Code = "unauthorized"
	CodeUnsupportedCurrency Code = "unsupported_currency"
	CodeUnsupportedMethod   Code = "unsupported_payment_method"
	CodeComplianceBlocked   Code = "compliance_blocked"
	CodeConversionFailed    Code = "conversion_failed"
	CodeTaxUnavailable      Code = "tax_service_unavailable"
	CodeGateway             Code = "payment_gateway"
)

// Error is a coded domain error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a coded error with a static message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
