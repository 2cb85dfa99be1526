// Package storage provides the Storage catalog.
// Storages represent physical or logical locations holding stock; stock is
// always partitioned by storage, a global figure is a sum across storages.
package storage

import (
	"stockledger/internal/core/id"
)

// Category defines the storage category.
type Category string

const (
	CategoryWarehouse Category = "warehouse"
	CategoryShopfloor Category = "shopfloor"
	CategoryTransit   Category = "transit"
	CategoryVirtual   Category = "virtual"
)

// Storage represents a stock-holding location.
type Storage struct {
	ID id.ID `db:"id" json:"id"`

	Name string `db:"name" json:"name"`

	// Code is an optional short identifier
	Code *string `db:"code" json:"code,omitempty"`

	Category Category `db:"category" json:"category"`

	// BranchID is the owning branch, if the storage belongs to one
	BranchID *id.ID `db:"branch_id" json:"branchId,omitempty"`

	// BranchName is joined for read models
	BranchName *string `db:"branch_name" json:"branchName,omitempty"`
}

// Branch represents an organizational branch owning storages.
type Branch struct {
	ID id.ID `db:"id" json:"id"`

	Name string `db:"name" json:"name"`

	IsHeadquarters bool `db:"is_headquarters" json:"isHeadquarters"`
}
