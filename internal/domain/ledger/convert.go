package ledger

import (
	"github.com/shopspring/decimal"

	"stockledger/internal/core/types"
)

// ToBase converts a quantity recorded in a line's unit into base units,
// rounded to the intermediate base-unit scale. A missing (zero) factor
// falls back to treating the quantity as already being in base units.
func ToBase(quantity, conversionFactor decimal.Decimal) decimal.Decimal {
	if conversionFactor.IsZero() {
		return types.RoundBaseQuantity(quantity)
	}
	return types.RoundBaseQuantity(quantity.Mul(conversionFactor))
}

// BaseQuantity resolves the line's base-unit quantity.
// A precomputed snapshot wins over reapplying the conversion factor: the
// snapshot exists precisely so that later factor changes do not corrupt
// historical movement math.
func (l *Line) BaseQuantity() decimal.Decimal {
	if l.QuantityInBase.Valid {
		return types.RoundBaseQuantity(l.QuantityInBase.Decimal)
	}
	factor := decimal.NewFromInt(1)
	if l.UnitConversionFactor.Valid && !l.UnitConversionFactor.Decimal.IsZero() {
		factor = l.UnitConversionFactor.Decimal
	}
	return ToBase(l.Quantity, factor)
}
