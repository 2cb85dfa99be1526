// Package dto provides request/response contracts for the HTTP API.
//
// The projection contract is deliberately explicit: every numeric field is a
// finite JSON number, every timestamp is an ISO-8601 string, and absent
// optional fields serialize as null rather than being omitted, so the shape
// is stable across callers.
package dto

import (
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
)

// StorageStockResponse is one per-storage slice of a variant's stock.
type StorageStockResponse struct {
	StorageID    string  `json:"storageId"`
	StorageName  string  `json:"storageName"`
	BranchID     *string `json:"branchId"`
	BranchName   *string `json:"branchName"`
	Quantity     float64 `json:"quantity"`
	QuantityBase float64 `json:"quantityBase"`
}

// MovementResponse is one entry of the recent-movement feed.
type MovementResponse struct {
	TransactionID     string    `json:"transactionId"`
	DocumentNumber    string    `json:"documentNumber"`
	TransactionType   string    `json:"transactionType"`
	Direction         string    `json:"direction"`
	Quantity          float64   `json:"quantity"`
	QuantityBase      float64   `json:"quantityBase"`
	SourceStorageID   *string   `json:"sourceStorageId"`
	SourceStorageName *string   `json:"sourceStorageName"`
	SourceBranchName  *string   `json:"sourceBranchName"`
	TargetStorageID   *string   `json:"targetStorageId"`
	TargetStorageName *string   `json:"targetStorageName"`
	OccurredAt        time.Time `json:"occurredAt"`
	Reason            *string   `json:"reason"`
}

// ProjectionRowResponse is one projected variant.
type ProjectionRowResponse struct {
	VariantID   string  `json:"variantId"`
	SKU         string  `json:"sku"`
	Barcode     *string `json:"barcode"`
	ProductName string  `json:"productName"`
	BrandName   *string `json:"brandName"`
	UnitSymbol  string  `json:"unitSymbol"`

	TotalStock     float64 `json:"totalStock"`
	TotalStockBase float64 `json:"totalStockBase"`
	CommittedStock float64 `json:"committedStock"`
	IncomingStock  float64 `json:"incomingStock"`
	AvailableStock float64 `json:"availableStock"`

	MinimumStock float64 `json:"minimumStock"`
	ReorderPoint float64 `json:"reorderPoint"`

	CostPerBaseUnit float64 `json:"costPerBaseUnit"`
	TotalValue      float64 `json:"totalValue"`
	TotalValueBase  float64 `json:"totalValueBase"`

	IsBelowMinimum bool `json:"isBelowMinimum"`
	IsBelowReorder bool `json:"isBelowReorder"`

	StorageBreakdown []StorageStockResponse `json:"storageBreakdown"`

	PrimaryStorageName     *string `json:"primaryStorageName"`
	PrimaryStorageQuantity float64 `json:"primaryStorageQuantity"`

	Movements []MovementResponse `json:"movements"`

	LastMovementAt        *time.Time `json:"lastMovementAt"`
	LastMovementType      *string    `json:"lastMovementType"`
	LastMovementDirection *string    `json:"lastMovementDirection"`
}

// ProjectionResponse is the full projection result.
type ProjectionResponse struct {
	Items      []ProjectionRowResponse `json:"items"`
	TotalItems int                     `json:"totalItems"`
}

// FromRow converts a domain row to its response shape.
func FromRow(r ledger.Row) ProjectionRowResponse {
	breakdown := make([]StorageStockResponse, len(r.StorageBreakdown))
	for i, entry := range r.StorageBreakdown {
		breakdown[i] = StorageStockResponse{
			StorageID:    entry.StorageID.String(),
			StorageName:  entry.StorageName,
			BranchID:     idString(entry.BranchID),
			BranchName:   entry.BranchName,
			Quantity:     entry.Quantity.InexactFloat64(),
			QuantityBase: entry.QuantityBase.InexactFloat64(),
		}
	}

	movements := make([]MovementResponse, len(r.Movements))
	for i, m := range r.Movements {
		movements[i] = MovementResponse{
			TransactionID:     m.TransactionID.String(),
			DocumentNumber:    m.DocumentNumber,
			TransactionType:   string(m.TransactionType),
			Direction:         string(m.Direction),
			Quantity:          m.Quantity.InexactFloat64(),
			QuantityBase:      m.QuantityBase.InexactFloat64(),
			SourceStorageID:   idString(m.SourceStorageID),
			SourceStorageName: m.SourceStorageName,
			SourceBranchName:  m.SourceBranchName,
			TargetStorageID:   idString(m.TargetStorageID),
			TargetStorageName: m.TargetStorageName,
			OccurredAt:        m.OccurredAt,
			Reason:            m.Reason,
		}
	}

	resp := ProjectionRowResponse{
		VariantID:   r.VariantID.String(),
		SKU:         r.SKU,
		Barcode:     r.Barcode,
		ProductName: r.ProductName,
		BrandName:   r.BrandName,
		UnitSymbol:  r.UnitSymbol,

		TotalStock:     r.TotalStock.InexactFloat64(),
		TotalStockBase: r.TotalStockBase.InexactFloat64(),
		CommittedStock: r.CommittedStock.InexactFloat64(),
		IncomingStock:  r.IncomingStock.InexactFloat64(),
		AvailableStock: r.AvailableStock.InexactFloat64(),

		MinimumStock: r.MinimumStock.InexactFloat64(),
		ReorderPoint: r.ReorderPoint.InexactFloat64(),

		CostPerBaseUnit: r.CostPerBaseUnit.InexactFloat64(),
		TotalValue:      r.TotalValue.InexactFloat64(),
		TotalValueBase:  r.TotalValueBase.InexactFloat64(),

		IsBelowMinimum: r.IsBelowMinimum,
		IsBelowReorder: r.IsBelowReorder,

		StorageBreakdown: breakdown,

		PrimaryStorageName:     r.PrimaryStorageName,
		PrimaryStorageQuantity: r.PrimaryStorageQuantity.InexactFloat64(),

		Movements: movements,

		LastMovementAt: r.LastMovementAt,
	}

	if r.LastMovementType != nil {
		t := string(*r.LastMovementType)
		resp.LastMovementType = &t
	}
	if r.LastMovementDirection != nil {
		d := string(*r.LastMovementDirection)
		resp.LastMovementDirection = &d
	}

	return resp
}

// FromRows converts a projection result.
func FromRows(rows []ledger.Row) ProjectionResponse {
	items := make([]ProjectionRowResponse, len(rows))
	for i, r := range rows {
		items[i] = FromRow(r)
	}
	return ProjectionResponse{Items: items, TotalItems: len(items)}
}

// BalancesResponse maps variant id to its scalar balance at one storage.
type BalancesResponse struct {
	StorageID string             `json:"storageId"`
	Balances  map[string]float64 `json:"balances"`
}

// BranchResponse is reference data for a branch filter control.
type BranchResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	IsHeadquarters bool   `json:"isHeadquarters"`
}

// StorageResponse is reference data for a storage filter control.
type StorageResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Code       *string `json:"code"`
	BranchID   *string `json:"branchId"`
	BranchName *string `json:"branchName"`
	Category   string  `json:"category"`
}

// FiltersResponse is the reference data for building filter controls.
type FiltersResponse struct {
	Branches []BranchResponse  `json:"branches"`
	Storages []StorageResponse `json:"storages"`
}

// FromFilters converts domain filter reference data.
func FromFilters(f ledger.Filters) FiltersResponse {
	branches := make([]BranchResponse, len(f.Branches))
	for i, b := range f.Branches {
		branches[i] = BranchResponse{
			ID:             b.ID.String(),
			Name:           b.Name,
			IsHeadquarters: b.IsHeadquarters,
		}
	}

	storages := make([]StorageResponse, len(f.Storages))
	for i, s := range f.Storages {
		storages[i] = StorageResponse{
			ID:         s.ID.String(),
			Name:       s.Name,
			Code:       s.Code,
			BranchID:   idString(s.BranchID),
			BranchName: s.BranchName,
			Category:   string(s.Category),
		}
	}

	return FiltersResponse{Branches: branches, Storages: storages}
}

func idString(v *id.ID) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}
