// Package catalog_repo provides PostgreSQL implementations for catalog
// read models consumed by the projection engine.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/domain/catalogs/variant"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	variantsTable = "cat_variants"
	productsTable = "cat_products"
)

// VariantRepo implements variant.Repository.
type VariantRepo struct {
	pool    *postgres.Pool
	builder squirrel.StatementBuilderType
}

// NewVariantRepo creates a new variant repository.
func NewVariantRepo(pool *postgres.Pool) *VariantRepo {
	return &VariantRepo{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// eligibleQuery builds the eligibility selection for the given criteria.
func (r *VariantRepo) eligibleQuery(sel variant.Selection) squirrel.SelectBuilder {
	q := r.builder.Select(
		"v.id",
		"v.sku",
		"v.barcode",
		"v.product_id",
		"p.name AS product_name",
		"p.brand AS brand_name",
		"v.track_inventory",
		"v.minimum_stock",
		"v.maximum_stock",
		"v.reorder_point",
		"v.base_cost",
		"v.base_price",
		"v.unit_symbol",
		"v.unit_conversion_factor",
	).From(variantsTable+" v").
		Join(productsTable+" p ON p.id = v.product_id").
		Where(squirrel.Eq{"v.track_inventory": true}).
		OrderBy("p.name", "v.sku").
		Limit(uint64(sel.ClampedLimit()))

	if sel.Search != "" {
		pattern := "%" + sel.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"v.sku": pattern},
			squirrel.ILike{"p.name": pattern},
		})
	}

	if len(sel.IDs) > 0 {
		q = q.Where(squirrel.Eq{"v.id": sel.IDs})
	}

	return q
}

// ListEligible returns inventory-tracked variants matching the selection.
func (r *VariantRepo) ListEligible(ctx context.Context, sel variant.Selection) ([]variant.Variant, error) {
	sql, args, err := r.eligibleQuery(sel).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build eligibility query: %w", err)
	}

	var variants []variant.Variant
	if err := pgxscan.Select(ctx, r.pool, &variants, sql, args...); err != nil {
		return nil, fmt.Errorf("select variants: %w", err)
	}

	return variants, nil
}

// Ensure interface compliance
var _ variant.Repository = (*VariantRepo)(nil)
