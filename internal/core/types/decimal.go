// Package types provides common numeric types and rounding rules.
package types

import (
	"github.com/shopspring/decimal"
)

// Rounding scales used across the projection engine.
// Keeping them in one place prevents drift between the fold,
// the valuation math and the serialized response.
const (
	// QuantityScale is the scale for stock quantities (NUMERIC(15,4) semantics).
	QuantityScale int32 = 4

	// BaseQuantityScale is the scale for intermediate per-line base-unit
	// conversion. Two extra digits so per-line rounding does not accumulate
	// into the running totals.
	BaseQuantityScale int32 = 6

	// MoneyScale is the scale for currency-valued outputs.
	MoneyScale int32 = 2
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// RoundQuantity rounds a stock quantity to 4 decimal places.
func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// RoundBaseQuantity rounds an intermediate base-unit quantity to 6 decimal places.
func RoundBaseQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(BaseQuantityScale)
}

// RoundMoney rounds a currency value to 2 decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// MustDecimal creates a decimal from a string, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}
