package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/storage"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	storagesTable = "cat_storages"
	branchesTable = "cat_branches"
)

// StorageRepo implements storage.Repository.
type StorageRepo struct {
	pool    *postgres.Pool
	builder squirrel.StatementBuilderType
}

// NewStorageRepo creates a new storage repository.
func NewStorageRepo(pool *postgres.Pool) *StorageRepo {
	return &StorageRepo{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *StorageRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(
		"s.id",
		"s.name",
		"s.code",
		"s.category",
		"s.branch_id",
		"b.name AS branch_name",
	).From(storagesTable + " s").
		LeftJoin(branchesTable + " b ON b.id = s.branch_id").
		OrderBy("s.name")
}

// List returns all storages with their owning branch.
func (r *StorageRepo) List(ctx context.Context) ([]storage.Storage, error) {
	sql, args, err := r.baseSelect().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var storages []storage.Storage
	if err := pgxscan.Select(ctx, r.pool, &storages, sql, args...); err != nil {
		return nil, fmt.Errorf("select storages: %w", err)
	}

	return storages, nil
}

// ListByBranch returns storages belonging to a branch.
func (r *StorageRepo) ListByBranch(ctx context.Context, branchID id.ID) ([]storage.Storage, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"s.branch_id": branchID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var storages []storage.Storage
	if err := pgxscan.Select(ctx, r.pool, &storages, sql, args...); err != nil {
		return nil, fmt.Errorf("select branch storages: %w", err)
	}

	return storages, nil
}

// ListBranches returns all branches.
func (r *StorageRepo) ListBranches(ctx context.Context) ([]storage.Branch, error) {
	sql, args, err := r.builder.Select(
		"id",
		"name",
		"is_headquarters",
	).From(branchesTable).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var branches []storage.Branch
	if err := pgxscan.Select(ctx, r.pool, &branches, sql, args...); err != nil {
		return nil, fmt.Errorf("select branches: %w", err)
	}

	return branches, nil
}

// Ensure interface compliance
var _ storage.Repository = (*StorageRepo)(nil)
