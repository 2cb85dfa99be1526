package variant

import (
	"context"

	"stockledger/internal/core/id"
)

// Selection caps for eligibility queries. The cap bounds total projection
// work predictably regardless of ledger size.
const (
	DefaultLimit = 100
	MaxLimit     = 200
)

// Selection describes which variants are eligible for a projection.
type Selection struct {
	// Search is a case-insensitive substring over SKU and product name.
	Search string

	// IDs restricts the selection to an explicit id set.
	IDs []id.ID

	// Limit caps the number of variants returned (DefaultLimit when zero,
	// never more than MaxLimit).
	Limit int
}

// ClampedLimit resolves the effective limit for the selection.
func (s Selection) ClampedLimit() int {
	switch {
	case s.Limit <= 0:
		return DefaultLimit
	case s.Limit > MaxLimit:
		return MaxLimit
	default:
		return s.Limit
	}
}

// Repository defines read access to the Variant catalog.
type Repository interface {
	// ListEligible returns inventory-tracked variants matching the selection,
	// ordered by product name then SKU.
	ListEligible(ctx context.Context, sel Selection) ([]Variant, error)
}
