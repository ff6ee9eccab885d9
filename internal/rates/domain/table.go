package domain

import "time"

// BaseCurrency anchors the rate table.
const BaseCurrency = "USD"

// SupportedCurrencies lists the codes with built-in rates.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "TRY"}

// Table is a set of exchange rates relative to the base currency.
type Table struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// DefaultTable returns the built-in static rates used when no fetched table is
// available.
func DefaultTable() Table {
	return Table{
		Base: BaseCurrency,
		Rates: map[string]float64{
			"USD": 1.0,
			"EUR": 0.92,
			"GBP": 0.79,
			"TRY": 34.5,
		},
	}
}

// Convert converts an amount between currencies via the base currency. An
// unknown currency on either side passes the amount through unchanged.
func (t Table) Convert(amount float64, from, to string) float64 {
	if from == to {
		return amount
	}
	fromRate, okFrom := t.Rates[from]
	toRate, okTo := t.Rates[to]
	if !okFrom || !okTo || fromRate == 0 {
		return amount
	}
	return amount / fromRate * toRate
}

// Symbol returns the display symbol for a currency code, falling back to the
// code itself.
func Symbol(code string) string {
	switch code {
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "TRY":
		return "₺"
	default:
		return code
	}
}
