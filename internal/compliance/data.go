package compliance

import "regexp"

// highRiskCountries are jurisdictions whose customers always get the
// country risk increment and a manual review flag. Mirrors the FATF
// high-risk and monitored lists.
var highRiskCountries = map[string]bool{
	"AF": true, // Afghanistan
	"IR": true, // Iran
	"KP": true, // North Korea
	"MM": true, // Myanmar
	"SY": true, // Syria
	"YE": true, // Yemen
	"SO": true, // Somalia
	"SS": true, // South Sudan
	"LY": true, // Libya
	"VE": true, // Venezuela
}

// IsHighRiskCountry reports membership of the high-risk country set.
func IsHighRiskCountry(country string) bool {
	return highRiskCountries[country]
}

// sanctionedCountries lists embargoed jurisdictions beyond the
// high-risk set. Country screening blocks on either list: every
// high-risk country is also a country-level sanctions match.
var sanctionedCountries = map[string]bool{
	"CU": true, // Cuba
}

// IsSanctionedCountry reports whether country alone blocks a payment.
func IsSanctionedCountry(country string) bool {
	return sanctionedCountries[country] || highRiskCountries[country]
}

// sanctionedEntities is the restricted-entity name list screened with
// fuzzy matching. Production deployments load the consolidated lists
// from the administrative process; this seed covers tests and dev.
var sanctionedEntities = []string{
	"global terror network",
	"narco holdings ltd",
	"shadow finance corp",
	"crimson trade syndicate",
	"ivan petrov",
	"eastern arms brokerage",
}

// pepKeywords are title words that mark a politically exposed person.
// A PEP hit is an enhanced due diligence signal, not a block.
var pepKeywords = []string{
	"minister",
	"senator",
	"governor",
	"president",
	"ambassador",
	"general",
	"deputy",
	"parliament",
}

// documentFormats validates identity document numbers per type.
var documentFormats = map[string]*regexp.Regexp{
	"passport":        regexp.MustCompile(`^[A-Z]{1,2}\d{6,9}$`),
	"national_id":     regexp.MustCompile(`^[A-Z0-9]{6,12}$`),
	"drivers_license": regexp.MustCompile(`^[A-Z0-9]{5,15}$`),
}
