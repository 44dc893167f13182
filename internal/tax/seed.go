package tax

import "time"

// SeedReferenceData loads a representative jurisdiction and rate set for
// development and tests. Production reference data comes from the
// administrative loading process.
func SeedReferenceData(store *MemoryReferenceStore) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	jurisdictions := []Jurisdiction{
		{Code: "DE", Name: "Germany", TaxSystem: SystemVAT, DefaultRate: 0.19, Currency: "EUR", ThresholdAmount: 1000, MOSSEligible: true, ReverseChargeApplicable: true},
		{Code: "FR", Name: "France", TaxSystem: SystemVAT, DefaultRate: 0.20, Currency: "EUR", ThresholdAmount: 1000, MOSSEligible: true, ReverseChargeApplicable: true},
		{Code: "IT", Name: "Italy", TaxSystem: SystemVAT, DefaultRate: 0.22, Currency: "EUR", ThresholdAmount: 1000, MOSSEligible: true, ReverseChargeApplicable: true},
		{Code: "ES", Name: "Spain", TaxSystem: SystemVAT, DefaultRate: 0.21, Currency: "EUR", ThresholdAmount: 1000, MOSSEligible: true, ReverseChargeApplicable: true},
		{Code: "NL", Name: "Netherlands", TaxSystem: SystemVAT, DefaultRate: 0.21, Currency: "EUR", ThresholdAmount: 1000, MOSSEligible: true, ReverseChargeApplicable: true},
		{Code: "IE", Name: "Ireland", TaxSystem: SystemVAT, DefaultRate: 0.23, Currency: "EUR", ThresholdAmount: 1000, MOSSEligible: true, ReverseChargeApplicable: true},
		{Code: "GB", Name: "United Kingdom", TaxSystem: SystemVAT, DefaultRate: 0.20, Currency: "GBP", ThresholdAmount: 1000, ReverseChargeApplicable: true},
		{Code: "AU", Name: "Australia", TaxSystem: SystemGST, DefaultRate: 0.10, Currency: "AUD"},
		{Code: "CA", Name: "Canada", TaxSystem: SystemGST, DefaultRate: 0.05, Currency: "CAD"},
		{Code: "US", Name: "United States", TaxSystem: SystemSalesTax, DefaultRate: 0, Currency: "USD"},
		{Code: "US-CA", Name: "California", TaxSystem: SystemSalesTax, DefaultRate: 0.0725, Currency: "USD"},
		{Code: "US-NY", Name: "New York", TaxSystem: SystemSalesTax, DefaultRate: 0.04, Currency: "USD"},
		{Code: "US-TX", Name: "Texas", TaxSystem: SystemSalesTax, DefaultRate: 0.0625, Currency: "USD"},
		{Code: "US-DE", Name: "Delaware", TaxSystem: SystemSalesTax, DefaultRate: 0, Currency: "USD"},
		{Code: "US-MT", Name: "Montana", TaxSystem: SystemSalesTax, DefaultRate: 0, Currency: "USD"},
		{Code: "US-NH", Name: "New Hampshire", TaxSystem: SystemSalesTax, DefaultRate: 0, Currency: "USD"},
		{Code: "US-OR", Name: "Oregon", TaxSystem: SystemSalesTax, DefaultRate: 0, Currency: "USD"},
	}

	var rates []Rate
	for _, j := range jurisdictions {
		rates = append(rates,
			Rate{JurisdictionCode: j.Code, ProductCategory: "standard", Rate: j.DefaultRate, RateType: RatePercentage, EffectiveFrom: from},
			Rate{JurisdictionCode: j.Code, ProductCategory: "digital_services", Rate: j.DefaultRate, RateType: RatePercentage, EffectiveFrom: from},
		)
	}

	// Reduced rates for a few categories where EU members apply them.
	rates = append(rates,
		Rate{JurisdictionCode: "DE", ProductCategory: "books", Rate: 0.07, RateType: RatePercentage, EffectiveFrom: from},
		Rate{JurisdictionCode: "FR", ProductCategory: "books", Rate: 0.055, RateType: RatePercentage, EffectiveFrom: from},
		Rate{JurisdictionCode: "IE", ProductCategory: "books", Rate: 0, RateType: RatePercentage, EffectiveFrom: from},
	)

	// Flat levies use the fixed rate type: the rate value is the charge
	// in minor units, independent of the transaction amount.
	rates = append(rates,
		Rate{JurisdictionCode: "DE", ProductCategory: "electronics_recycling", Rate: 250, RateType: RateFixed, EffectiveFrom: from},
		Rate{JurisdictionCode: "FR", ProductCategory: "electronics_recycling", Rate: 300, RateType: RateFixed, EffectiveFrom: from},
	)

	store.Load(jurisdictions, rates)
}
