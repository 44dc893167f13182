package compliance

import (
	"context"
	"errors"
	"strings"
)

// Risk model constants. The score is additive and capped at 100; a score
// above reviewThreshold flags for manual review, and only hard failures
// fail the check outright.
const (
	riskHighRiskCountry   = 30
	riskHighValue         = 25
	riskMediumValue       = 15
	riskIdentityVerified  = -15
	riskIdentityRejected  = 50
	riskIdentityUnknown   = 20
	riskDocumentValid     = -10
	riskDocumentInvalid   = 20
	riskBusinessEntity    = 5
	reviewThreshold       = 50
	maxRiskScore          = 100

	// Value bands in minor units.
	highValueThreshold   = 1_000_000
	mediumValueThreshold = 100_000
)

// scoreKYC is the pure risk model. It reads the pre-fetched identity
// evidence and never performs I/O itself.
func scoreKYC(in KYCInput, identity IdentityStatus, lookupErr error) KYCResult {
	result := KYCResult{}
	score := 0
	addCheck := func(name string) {
		result.ChecksPerformed = append(result.ChecksPerformed, name)
	}
	hardFail := func(reason string) {
		result.FailureReasons = append(result.FailureReasons, reason)
	}

	addCheck("country_risk")
	if IsHighRiskCountry(in.Country) {
		score += riskHighRiskCountry
		result.RequiresManualReview = true
	}

	addCheck("transaction_value")
	switch {
	case in.Amount > highValueThreshold:
		score += riskHighValue
	case in.Amount > mediumValueThreshold:
		score += riskMediumValue
	}

	addCheck("identity_verification")
	switch {
	case lookupErr != nil && !errors.Is(lookupErr, ErrCustomerNotFound):
		score += riskIdentityUnknown
	case identity == IdentityVerified:
		score += riskIdentityVerified
	case identity == IdentityRejected:
		score += riskIdentityRejected
		hardFail("identity previously rejected")
	}

	if in.DocumentType != "" && in.DocumentNumber != "" {
		addCheck("document_format")
		if documentFormatValid(in.DocumentType, in.DocumentNumber) {
			score += riskDocumentValid
		} else {
			score += riskDocumentInvalid
			hardFail("invalid document format")
		}
	}

	if strings.EqualFold(in.CustomerType, "business") {
		addCheck("business_entity")
		score += riskBusinessEntity
	}

	if score < 0 {
		score = 0
	}
	if score > maxRiskScore {
		score = maxRiskScore
	}
	result.RiskScore = score

	if score > reviewThreshold || len(result.FailureReasons) > 0 {
		result.RequiresManualReview = true
	}
	result.Passed = len(result.FailureReasons) == 0
	return result
}

func documentFormatValid(documentType, number string) bool {
	format, ok := documentFormats[strings.ToLower(documentType)]
	if !ok {
		return false
	}
	return format.MatchString(strings.ToUpper(number))
}

// lookupIdentity fetches the prior verification status. An absent
// profile is neutral; a directory outage is reflected in the score.
func lookupIdentity(ctx context.Context, directory CustomerDirectory, customerID string) (IdentityStatus, error) {
	profile, err := directory.Find(ctx, customerID)
	if err != nil {
		return IdentityUnknown, err
	}
	return profile.IdentityStatus, nil
}
