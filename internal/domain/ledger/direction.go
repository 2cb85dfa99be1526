package ledger

// Direction is the signed effect of a transaction type on stock.
type Direction string

const (
	// DirectionIn increases stock
	DirectionIn Direction = "IN"
	// DirectionOut decreases stock
	DirectionOut Direction = "OUT"
	// DirectionNone has no stock effect (orders, payments, unknown types)
	DirectionNone Direction = "NONE"
)

// Classify maps a transaction type to its stock direction.
// Total over the type enumeration: unmapped types resolve to DirectionNone
// rather than failing, so a ledger containing a future type cannot crash the
// projection. A purchase order is intent to receive, never a movement.
func Classify(t TransactionType) Direction {
	switch t {
	case TypePurchase, TypeSaleReturn, TypeTransferIn, TypeAdjustmentIn:
		return DirectionIn
	case TypeSale, TypePurchaseReturn, TypeTransferOut, TypeAdjustmentOut:
		return DirectionOut
	default:
		return DirectionNone
	}
}

// InTypes returns the transaction types that increase stock.
// The scalar balance query embeds these sets inline; they must stay the
// single source of truth shared with Classify.
func InTypes() []TransactionType {
	return []TransactionType{TypePurchase, TypeSaleReturn, TypeTransferIn, TypeAdjustmentIn}
}

// OutTypes returns the transaction types that decrease stock.
func OutTypes() []TransactionType {
	return []TransactionType{TypeSale, TypePurchaseReturn, TypeTransferOut, TypeAdjustmentOut}
}

// IsKnown reports whether t is part of the closed type enumeration.
// Used only for observability: unknown types still classify as NONE.
func IsKnown(t TransactionType) bool {
	switch t {
	case TypeSale, TypePurchase, TypePurchaseOrder, TypeSaleReturn,
		TypePurchaseReturn, TypeTransferOut, TypeTransferIn,
		TypeAdjustmentIn, TypeAdjustmentOut, TypePaymentIn, TypePaymentOut:
		return true
	}
	return false
}
