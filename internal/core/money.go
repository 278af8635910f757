// Package core holds the ledger arithmetic: currency rounding, split
// allocation, settlement reduction, dashboard aggregation and the
// recurrence engine. Nothing in here performs I/O.
package core

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of fractional digits kept on every
// finalized monetary value.
const CurrencyPlaces = 2

// RoundCurrency rounds to cents, ties away from zero (1.005 -> 1.01,
// -1.005 -> -1.01). It is the only rounding rule used on money.
func RoundCurrency(x decimal.Decimal) decimal.Decimal {
	return x.Round(CurrencyPlaces)
}

// FormatMoney renders an amount with exactly two fractional digits.
func FormatMoney(x decimal.Decimal) string {
	return RoundCurrency(x).StringFixed(CurrencyPlaces)
}
