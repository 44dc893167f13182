// Package audit defines the append-only compliance audit trail. Events
// are emitted from domain logic and fanned out to stores and sinks; they
// are never mutated or deleted.
package audit

import "time"

// Status is the outcome recorded for a compliance check or decision.
type Status string

const (
	StatusPassed       Status = "passed"
	StatusFailed       Status = "failed"
	StatusPending      Status = "pending"
	StatusManualReview Status = "manual_review"
)

// EventType names the action that produced the event.
type EventType string

const (
	EventKYCCheck           EventType = "kyc_check"
	EventSanctionsScreening EventType = "sanctions_screening"
	EventGDPRValidation     EventType = "gdpr_validation"
	EventTaxCalculated      EventType = "tax_calculated"
	EventInvoiceGenerated   EventType = "invoice_generated"
	EventPaymentProcessed   EventType = "payment_processed"
	EventPaymentBlocked     EventType = "payment_blocked"
	EventPaymentFailed      EventType = "payment_failed"
)

// Event is one append-only compliance audit record. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	EventType  EventType
	EntityType string
	EntityID   string
	Rule       string
	Status     Status
	Details    map[string]any
	RiskScore  *int
	ReviewedBy string
	ReviewedAt *time.Time
	CreatedAt  time.Time
}

// WithRisk attaches a risk score; the pointer distinguishes "no score"
// from a genuine score of 0.
func (e Event) WithRisk(score int) Event {
	e.RiskScore = &score
	return e
}
