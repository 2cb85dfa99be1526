// Package ledger provides the inventory ledger projection engine.
//
// Stock is never persisted as a balance. Every figure the engine returns is
// recomputed per call by folding confirmed transaction lines, so the ledger
// stays the single source of truth and any balance is reproducible from
// history alone.
package ledger

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/storage"
)

// TransactionType is the closed enumeration of ledger transaction kinds.
type TransactionType string

const (
	TypeSale           TransactionType = "SALE"
	TypePurchase       TransactionType = "PURCHASE"
	TypePurchaseOrder  TransactionType = "PURCHASE_ORDER"
	TypeSaleReturn     TransactionType = "SALE_RETURN"
	TypePurchaseReturn TransactionType = "PURCHASE_RETURN"
	TypeTransferOut    TransactionType = "TRANSFER_OUT"
	TypeTransferIn     TransactionType = "TRANSFER_IN"
	TypeAdjustmentIn   TransactionType = "ADJUSTMENT_IN"
	TypeAdjustmentOut  TransactionType = "ADJUSTMENT_OUT"
	TypePaymentIn      TransactionType = "PAYMENT_IN"
	TypePaymentOut     TransactionType = "PAYMENT_OUT"
)

// Status is the transaction lifecycle status.
// Only confirmed transactions are eligible for projection.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusVoid      Status = "VOID"
	StatusCancelled Status = "CANCELLED"
)

// Metadata represents the free-form JSONB annotation carried by a transaction.
// Implements sql.Scanner and driver.Valuer for PostgreSQL JSONB mapping.
// Uses json.Number to preserve numeric precision.
type Metadata map[string]any

// Scan implements sql.Scanner for reading from PostgreSQL JSONB.
func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}

	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return fmt.Errorf("unsupported type for Metadata: %T", src)
	}

	if len(source) == 0 {
		*m = nil
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(source))
	decoder.UseNumber()

	var result map[string]any
	if err := decoder.Decode(&result); err != nil {
		return fmt.Errorf("failed to decode Metadata: %w", err)
	}

	*m = result
	return nil
}

// Value implements driver.Valuer for writing to PostgreSQL JSONB.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// GetString returns string value or empty string if not found/wrong type.
func (m Metadata) GetString(key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// Metadata keys checked, in priority order, when resolving a movement reason.
var reasonKeys = []string{"depositReason", "withdrawalReason", "description"}

// Reason resolves the best-effort movement reason from metadata.
// Returns nil when no known key carries a non-empty string.
func (m Metadata) Reason() *string {
	for _, key := range reasonKeys {
		if v := m.GetString(key); v != "" {
			return &v
		}
	}
	return nil
}

// Line is a confirmed transaction line joined with its transaction header and
// the storage entities it references. Lines are immutable: the scan is the
// only way they enter the engine and nothing ever writes them back.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`

	// Transaction header snapshot
	TransactionID   id.ID           `db:"transaction_id" json:"transactionId"`
	DocumentNumber  string          `db:"document_number" json:"documentNumber"`
	TransactionType TransactionType `db:"transaction_type" json:"transactionType"`
	OccurredAt      time.Time       `db:"occurred_at" json:"occurredAt"`
	Notes           *string         `db:"notes" json:"notes,omitempty"`
	Metadata        Metadata        `db:"metadata" json:"metadata,omitempty"`

	// Line payload
	VariantID id.ID `db:"variant_id" json:"variantId"`

	// Quantity in the unit recorded at transaction time.
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`

	// UnitOfMeasure is the unit label snapshot.
	UnitOfMeasure string `db:"unit_of_measure" json:"unitOfMeasure"`

	// UnitConversionFactor is the factor snapshot taken at transaction time.
	UnitConversionFactor decimal.NullDecimal `db:"unit_conversion_factor" json:"unitConversionFactor"`

	// QuantityInBase is the precomputed base-unit quantity. When present it is
	// authoritative: later changes to the variant's conversion factor must not
	// retroactively change historical movement math.
	QuantityInBase decimal.NullDecimal `db:"quantity_in_base" json:"quantityInBase"`

	// Source storage (the transaction's storage)
	SourceStorageID   *id.ID  `db:"source_storage_id" json:"sourceStorageId,omitempty"`
	SourceStorageName *string `db:"source_storage_name" json:"sourceStorageName,omitempty"`
	SourceBranchID    *id.ID  `db:"source_branch_id" json:"sourceBranchId,omitempty"`
	SourceBranchName  *string `db:"source_branch_name" json:"sourceBranchName,omitempty"`

	// Target storage (transfers only)
	TargetStorageID   *id.ID  `db:"target_storage_id" json:"targetStorageId,omitempty"`
	TargetStorageName *string `db:"target_storage_name" json:"targetStorageName,omitempty"`
}

// StorageStock is a per-storage slice of a variant's stock.
type StorageStock struct {
	StorageID    id.ID           `json:"storageId"`
	StorageName  string          `json:"storageName"`
	BranchID     *id.ID          `json:"branchId"`
	BranchName   *string         `json:"branchName"`
	Quantity     decimal.Decimal `json:"quantity"`
	QuantityBase decimal.Decimal `json:"quantityBase"`
}

// Movement is one entry of a row's recent-movement feed.
type Movement struct {
	TransactionID   id.ID           `json:"transactionId"`
	DocumentNumber  string          `json:"documentNumber"`
	TransactionType TransactionType `json:"transactionType"`
	Direction       Direction       `json:"direction"`

	// Absolute quantities, native and base units.
	Quantity     decimal.Decimal `json:"quantity"`
	QuantityBase decimal.Decimal `json:"quantityBase"`

	SourceStorageID   *id.ID  `json:"sourceStorageId"`
	SourceStorageName *string `json:"sourceStorageName"`
	SourceBranchName  *string `json:"sourceBranchName"`
	TargetStorageID   *id.ID  `json:"targetStorageId"`
	TargetStorageName *string `json:"targetStorageName"`

	OccurredAt time.Time `json:"occurredAt"`

	// Reason is resolved from transaction metadata, best effort.
	Reason *string `json:"reason"`
}

// Row is one projected variant: computed, returned, discarded.
type Row struct {
	VariantID   id.ID   `json:"variantId"`
	SKU         string  `json:"sku"`
	Barcode     *string `json:"barcode"`
	ProductName string  `json:"productName"`
	BrandName   *string `json:"brandName"`
	UnitSymbol  string  `json:"unitSymbol"`

	// Signed running sums across all matched lines.
	TotalStock     decimal.Decimal `json:"totalStock"`
	TotalStockBase decimal.Decimal `json:"totalStockBase"`

	// Reserved extension point for a future reservation subsystem;
	// always zero today but part of the stable contract.
	CommittedStock decimal.Decimal `json:"committedStock"`
	IncomingStock  decimal.Decimal `json:"incomingStock"`

	// AvailableStock = TotalStock - CommittedStock + IncomingStock.
	AvailableStock decimal.Decimal `json:"availableStock"`

	MinimumStock decimal.Decimal `json:"minimumStock"`
	ReorderPoint decimal.Decimal `json:"reorderPoint"`

	// Valuation
	CostPerBaseUnit decimal.Decimal `json:"costPerBaseUnit"`
	TotalValue      decimal.Decimal `json:"totalValue"`
	TotalValueBase  decimal.Decimal `json:"totalValueBase"`

	IsBelowMinimum bool `json:"isBelowMinimum"`
	IsBelowReorder bool `json:"isBelowReorder"`

	// StorageBreakdown is sorted by descending absolute quantity.
	StorageBreakdown []StorageStock `json:"storageBreakdown"`

	PrimaryStorageName     *string         `json:"primaryStorageName"`
	PrimaryStorageQuantity decimal.Decimal `json:"primaryStorageQuantity"`

	// Movements is the capped, time-descending feed.
	Movements []Movement `json:"movements"`

	LastMovementAt        *time.Time       `json:"lastMovementAt"`
	LastMovementType      *TransactionType `json:"lastMovementType"`
	LastMovementDirection *Direction       `json:"lastMovementDirection"`
}

// ProjectionFilter describes a full projection request.
type ProjectionFilter struct {
	// Search is a case-insensitive substring over SKU and product name.
	Search string

	// StorageID scopes the ledger scan to one storage (source or target).
	StorageID *id.ID

	// BranchID scopes the scan to the storages of one branch. A branch that
	// owns no storages yields an empty projection.
	BranchID *id.ID

	// IncludeZero keeps rows with zero stock and no movements. When nil it
	// defaults to true whenever a search term was supplied, false otherwise,
	// so a searched-for-but-stockless item is still discoverable.
	IncludeZero *bool

	// Limit caps eligible variants (default 100, ceiling 200).
	Limit int
}

// IncludeZeroResolved resolves the effective zero-row policy.
func (f ProjectionFilter) IncludeZeroResolved() bool {
	if f.IncludeZero != nil {
		return *f.IncludeZero
	}
	return f.Search != ""
}

// Filters is the reference data for building filter controls.
type Filters struct {
	Branches []storage.Branch  `json:"branches"`
	Storages []storage.Storage `json:"storages"`
}
