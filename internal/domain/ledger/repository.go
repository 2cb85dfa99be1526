package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
)

// LineFilter scopes a ledger scan.
type LineFilter struct {
	// VariantIDs restricts the scan to these variants. Eligibility is decided
	// before the scan, so this is never empty in practice.
	VariantIDs []id.ID

	// StorageIDs, when non-empty, keeps lines whose source OR target storage
	// is in the set: a transfer's counterpart storage is equally relevant to
	// that storage's view.
	StorageIDs []id.ID
}

// Repository defines read access to the transaction ledger.
// The engine never writes; both operations observe a single snapshot of the
// ledger as returned by the store for that call.
type Repository interface {
	// ScanLines returns every CONFIRMED-status line in scope, joined with its
	// transaction header and both storage references, ordered newest-first.
	ScanLines(ctx context.Context, filter LineFilter) ([]Line, error)

	// SumBalances computes, per variant, a single conditional sum over
	// confirmed lines at exactly one storage: IN-type lines add, OUT-type
	// subtract, everything else is ignored. Variants absent from the result
	// are implicitly zero.
	SumBalances(ctx context.Context, storageID id.ID, variantIDs []id.ID) (map[id.ID]decimal.Decimal, error)
}
