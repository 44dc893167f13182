package currency

import "time"

// ConversionResult reports one currency conversion. The provider and
// quote timestamp are carried through to the payment record so auditors
// can trace which snapshot priced a settlement.
type ConversionResult struct {
	OriginalAmount  int64     `json:"original_amount"`
	ConvertedAmount int64     `json:"converted_amount"`
	FromCurrency    string    `json:"from_currency"`
	ToCurrency      string    `json:"to_currency"`
	ExchangeRate    float64   `json:"exchange_rate"`
	Fees            int64     `json:"fees"`
	RateProvider    string    `json:"rate_provider,omitempty"`
	RateAsOf        time.Time `json:"rate_as_of,omitempty"`
}
