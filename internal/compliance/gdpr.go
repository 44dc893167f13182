package compliance

import (
	"fmt"
	"time"
)

// evaluateGDPR is the pure lawfulness check. Consent evidence and
// profile data are fetched by the caller; this only decides.
func evaluateGDPR(in GDPRInput, consents []ConsentRecord, profile CustomerProfile, now time.Time) GDPRResult {
	result := GDPRResult{}

	if !IsExemptPurpose(in.DataProcessingPurpose) {
		if !consentSatisfied(in, consents, now) {
			result.Issues = append(result.Issues,
				fmt.Sprintf("no affirmative consent on record for purpose %q", in.DataProcessingPurpose))
		}
	}

	if in.RetentionPeriodDays > 0 && !profile.DataCollectedAt.IsZero() {
		age := now.Sub(profile.DataCollectedAt)
		limit := time.Duration(in.RetentionPeriodDays) * 24 * time.Hour
		if age > limit {
			result.Issues = append(result.Issues,
				fmt.Sprintf("customer data age %dd exceeds retention period of %dd",
					int(age.Hours()/24), in.RetentionPeriodDays))
		}
	}

	result.Compliant = len(result.Issues) == 0
	return result
}

// consentSatisfied accepts either an explicit per-request consent flag
// or an active stored grant for the purpose.
func consentSatisfied(in GDPRInput, consents []ConsentRecord, now time.Time) bool {
	if in.ConsentGiven != nil && *in.ConsentGiven {
		return true
	}
	for _, record := range consents {
		if string(record.Purpose) == in.DataProcessingPurpose && record.Active(now) {
			return true
		}
	}
	return false
}
