// Package variant provides the Variant catalog.
// A variant is the stock-keeping unit: the level at which inventory
// quantities, thresholds and costs are tracked.
package variant

import (
	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
)

// Variant represents a stock-keeping unit of a product.
// The projection engine only reads variants; CRUD lives elsewhere.
type Variant struct {
	ID id.ID `db:"id" json:"id"`

	// SKU is the variant article
	SKU string `db:"sku" json:"sku"`

	// Barcode is the variant barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// ProductID is the parent product reference
	ProductID id.ID `db:"product_id" json:"productId"`

	// ProductName is the parent product name (joined for read models)
	ProductName string `db:"product_name" json:"productName"`

	// BrandName is the parent product brand, if any
	BrandName *string `db:"brand_name" json:"brandName,omitempty"`

	// TrackInventory marks the variant as stock-tracked.
	// Variants with this false never appear in projections.
	TrackInventory bool `db:"track_inventory" json:"trackInventory"`

	// Threshold levels. Zero means "not tracked" for the derived flags.
	MinimumStock decimal.Decimal `db:"minimum_stock" json:"minimumStock"`
	MaximumStock decimal.Decimal `db:"maximum_stock" json:"maximumStock"`
	ReorderPoint decimal.Decimal `db:"reorder_point" json:"reorderPoint"`

	// Costing
	BaseCost  decimal.Decimal `db:"base_cost" json:"baseCost"`
	BasePrice decimal.Decimal `db:"base_price" json:"basePrice"`

	// Unit descriptor establishing the base-unit relationship.
	// ConversionFactor converts one recorded unit into base units,
	// e.g. a "box" variant with base "piece": factor = 12.
	UnitSymbol           string          `db:"unit_symbol" json:"unitSymbol"`
	UnitConversionFactor decimal.Decimal `db:"unit_conversion_factor" json:"unitConversionFactor"`
}

// CostPerBaseUnit returns the cost of one base unit.
// A conversion factor of zero or one leaves the base cost unchanged.
func (v *Variant) CostPerBaseUnit() decimal.Decimal {
	one := decimal.NewFromInt(1)
	if v.UnitConversionFactor.IsZero() || v.UnitConversionFactor.Equal(one) {
		return v.BaseCost
	}
	return v.BaseCost.Div(v.UnitConversionFactor)
}
