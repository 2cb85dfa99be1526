package storage

import (
	"context"

	"stockledger/internal/core/id"
)

// Repository defines read access to the Storage and Branch catalogs.
type Repository interface {
	// List returns all storages with their owning branch, ordered by name.
	List(ctx context.Context) ([]Storage, error)

	// ListByBranch returns storages belonging to a branch.
	// A branch with no storages yields an empty slice, not an error.
	ListByBranch(ctx context.Context, branchID id.ID) ([]Storage, error)

	// ListBranches returns all branches ordered by name.
	ListBranches(ctx context.Context) ([]Branch, error)
}
