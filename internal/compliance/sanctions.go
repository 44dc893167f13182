package compliance

import (
	"math"
	"strings"
)

// This file is pure screening logic - no I/O, no side effects.

// screenSanctions evaluates the input against the country list, the
// entity list, and the PEP keyword set, short-circuiting on the first
// match. A PEP signal raises the score without setting Match.
func screenSanctions(in SanctionsInput) SanctionsResult {
	result := SanctionsResult{}

	if IsSanctionedCountry(in.Country) {
		result.Match = true
		result.RiskScore = 100
		result.MatchedOn = "country"
		return result
	}

	if confidence := matchEntityList(in.CustomerName); confidence > 0 {
		result.Match = true
		result.RiskScore = confidence
		result.MatchedOn = "customer_name"
		return result
	}

	if confidence := matchEntityList(in.BusinessName); confidence > 0 {
		result.Match = true
		result.RiskScore = confidence
		result.MatchedOn = "business_name"
		return result
	}

	if hasPEPKeyword(in.CustomerName) || hasPEPKeyword(in.BusinessName) {
		result.PEPSignal = true
		result.RiskScore = 40
	}
	return result
}

// matchEntityList returns a confidence score in (0, 100] when name
// fuzzily matches a restricted entity, or 0 when it does not. Confidence
// scales with how much of the entity name the input covers: an exact
// match scores 100, a partial substring match proportionally less, with
// a floor so any hit is still actionable.
func matchEntityList(name string) int {
	normalized := normalizeName(name)
	if normalized == "" {
		return 0
	}
	for _, entity := range sanctionedEntities {
		if normalized == entity {
			return 100
		}
		// Very short fragments would substring-match everything.
		partial := strings.Contains(normalized, entity) ||
			(len(normalized) >= 4 && strings.Contains(entity, normalized))
		if partial {
			shorter, longer := float64(len(normalized)), float64(len(entity))
			if shorter > longer {
				shorter, longer = longer, shorter
			}
			confidence := int(math.Round(shorter / longer * 100))
			if confidence < 60 {
				confidence = 60
			}
			return confidence
		}
	}
	return 0
}

func hasPEPKeyword(name string) bool {
	normalized := normalizeName(name)
	if normalized == "" {
		return false
	}
	for _, keyword := range pepKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
