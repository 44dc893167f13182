// Package compliance performs KYC risk scoring, sanctions and PEP
// screening, and GDPR lawfulness validation, and records every check on
// the append-only compliance audit trail.
package compliance

import "time"

// IdentityStatus is the outcome of a prior identity verification.
type IdentityStatus string

const (
	IdentityVerified IdentityStatus = "verified"
	IdentityRejected IdentityStatus = "rejected"
	IdentityUnknown  IdentityStatus = "unknown"
)

// CustomerProfile is what the directory knows about a customer before
// any per-transaction checks run.
type CustomerProfile struct {
	CustomerID      string
	IdentityStatus  IdentityStatus
	DataCollectedAt time.Time
}

// KYCInput is the typed boundary struct for one KYC check.
type KYCInput struct {
	CustomerID string `json:"customer_id"`
	// Amount is the transaction value in minor units.
	Amount  int64  `json:"amount"`
	Country string `json:"country"`
	// DocumentType and DocumentNumber trigger document format
	// verification when both are supplied.
	DocumentType   string `json:"document_type,omitempty"`
	DocumentNumber string `json:"document_number,omitempty"`
	CustomerType   string `json:"customer_type"`
}

// KYCResult is the outcome of one KYC check. A high risk score flags for
// review; only hard failures fail the check.
type KYCResult struct {
	Passed               bool      `json:"passed"`
	RiskScore            int       `json:"risk_score"`
	RequiresManualReview bool      `json:"requires_manual_review"`
	FailureReasons       []string  `json:"failure_reasons,omitempty"`
	ChecksPerformed      []string  `json:"checks_performed"`
	CheckedAt            time.Time `json:"checked_at"`
}

// SanctionsInput is the typed boundary struct for one screening.
type SanctionsInput struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name,omitempty"`
	Country      string `json:"country"`
	BusinessName string `json:"business_name,omitempty"`
}

// SanctionsResult is the outcome of one sanctions screening. A PEP
// signal raises RiskScore without setting Match.
type SanctionsResult struct {
	Match      bool      `json:"match"`
	RiskScore  int       `json:"risk_score"`
	MatchedOn  string    `json:"matched_on,omitempty"`
	PEPSignal  bool      `json:"pep_signal,omitempty"`
	ScreenedAt time.Time `json:"screened_at"`
}

// GDPRInput is the typed boundary struct for one lawfulness check.
type GDPRInput struct {
	CustomerID            string `json:"customer_id"`
	ConsentGiven          *bool  `json:"consent_given,omitempty"`
	DataProcessingPurpose string `json:"data_processing_purpose"`
	RetentionPeriodDays   int    `json:"retention_period_days"`
}

// GDPRResult is the outcome of one lawfulness check. Compliant is the
// conjunction of every individual condition; Issues explains each
// failing one.
type GDPRResult struct {
	Compliant bool     `json:"compliant"`
	Issues    []string `json:"issues,omitempty"`
}

// Report aggregates audit activity over a period for regulators.
type Report struct {
	ArtifactID    string         `json:"artifact_id"`
	ReportType    string         `json:"report_type"`
	Jurisdiction  string         `json:"jurisdiction,omitempty"`
	PeriodStart   time.Time      `json:"period_start"`
	PeriodEnd     time.Time      `json:"period_end"`
	TotalEvents   int            `json:"total_events"`
	StatusCounts  map[string]int `json:"status_counts"`
	FlaggedCount  int            `json:"flagged_count"`
	FlaggedEvents []FlaggedEntry `json:"flagged_events"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

// FlaggedEntry is one suspicious audit event surfaced in a report.
type FlaggedEntry struct {
	EventType string    `json:"event_type"`
	EntityID  string    `json:"entity_id"`
	Rule      string    `json:"rule"`
	RiskScore int       `json:"risk_score"`
	CreatedAt time.Time `json:"created_at"`
}
