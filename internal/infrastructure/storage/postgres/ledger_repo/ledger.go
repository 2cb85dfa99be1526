// Package ledger_repo provides the PostgreSQL implementation of the ledger
// repository: the confirmed-line scan and the scalar balance aggregate.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	transactionsTable     = "doc_transactions"
	transactionLinesTable = "doc_transaction_lines"
	storagesTable         = "cat_storages"
	branchesTable         = "cat_branches"
)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	pool    *postgres.Pool
	builder squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(pool *postgres.Pool) *LedgerRepo {
	return &LedgerRepo{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// scanQuery builds the joined line scan for the given filter.
func (r *LedgerRepo) scanQuery(filter ledger.LineFilter) squirrel.SelectBuilder {
	q := r.builder.Select(
		"l.id AS line_id",
		"t.id AS transaction_id",
		"t.document_number",
		"t.transaction_type",
		"t.created_at AS occurred_at",
		"t.notes",
		"t.metadata",
		"l.variant_id",
		"l.quantity",
		"l.unit_of_measure",
		"l.unit_conversion_factor",
		"l.quantity_in_base",
		"t.storage_id AS source_storage_id",
		"s.name AS source_storage_name",
		"s.branch_id AS source_branch_id",
		"sb.name AS source_branch_name",
		"t.target_storage_id",
		"ts.name AS target_storage_name",
	).From(transactionLinesTable+" l").
		Join(transactionsTable+" t ON t.id = l.transaction_id").
		LeftJoin(storagesTable+" s ON s.id = t.storage_id").
		LeftJoin(branchesTable+" sb ON sb.id = s.branch_id").
		LeftJoin(storagesTable+" ts ON ts.id = t.target_storage_id").
		Where(squirrel.Eq{"t.status": ledger.StatusConfirmed}).
		Where(squirrel.Eq{"l.variant_id": filter.VariantIDs}).
		OrderBy("t.created_at DESC", "l.id DESC")

	// A line matches a storage filter if either side of the movement is in
	// the set: a transfer's counterpart storage is part of that storage's view.
	if len(filter.StorageIDs) > 0 {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"t.storage_id": filter.StorageIDs},
			squirrel.Eq{"t.target_storage_id": filter.StorageIDs},
		})
	}

	return q
}

// ScanLines returns confirmed lines joined with header and storages, newest-first.
func (r *LedgerRepo) ScanLines(ctx context.Context, filter ledger.LineFilter) ([]ledger.Line, error) {
	if len(filter.VariantIDs) == 0 {
		return []ledger.Line{}, nil
	}

	sql, args, err := r.scanQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build scan query: %w", err)
	}

	var lines []ledger.Line
	if err := pgxscan.Select(ctx, r.pool, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("scan ledger lines: %w", err)
	}

	return lines, nil
}

// balanceRow is the scan target for the conditional-sum aggregate.
type balanceRow struct {
	VariantID id.ID           `db:"variant_id"`
	Balance   decimal.Decimal `db:"balance"`
}

// balanceQuery is the scalar conditional-sum aggregate. ABS mirrors the
// fold's normalization: the direction decides the sign, the recorded sign
// on the line is ignored, so both paths agree on sign-prenormalized input.
const balanceQuery = `
	SELECT
		l.variant_id,
		SUM(CASE
			WHEN t.transaction_type = ANY($1) THEN ABS(l.quantity)
			WHEN t.transaction_type = ANY($2) THEN -ABS(l.quantity)
			ELSE 0
		END) AS balance
	FROM ` + transactionLinesTable + ` l
	JOIN ` + transactionsTable + ` t ON t.id = l.transaction_id
	WHERE t.status = $3
	  AND t.storage_id = $4
	  AND l.variant_id = ANY($5)
	GROUP BY l.variant_id
`

// SumBalances computes per-variant signed sums at one storage in a single
// aggregate query. The IN/OUT sets are evaluated inline as set-membership
// tests against the transaction type for query-plan efficiency; they come
// from the same tables the full projection classifier uses.
func (r *LedgerRepo) SumBalances(ctx context.Context, storageID id.ID, variantIDs []id.ID) (map[id.ID]decimal.Decimal, error) {
	if len(variantIDs) == 0 {
		return map[id.ID]decimal.Decimal{}, nil
	}

	args := []any{
		typeStrings(ledger.InTypes()),
		typeStrings(ledger.OutTypes()),
		string(ledger.StatusConfirmed),
		storageID,
		variantIDs,
	}

	var rows []balanceRow
	if err := pgxscan.Select(ctx, r.pool, &rows, balanceQuery, args...); err != nil {
		return nil, fmt.Errorf("sum balances: %w", err)
	}

	balances := make(map[id.ID]decimal.Decimal, len(rows))
	for _, row := range rows {
		balances[row.VariantID] = types.RoundQuantity(row.Balance)
	}

	return balances, nil
}

func typeStrings(ts []ledger.TransactionType) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

// Ensure interface compliance
var _ ledger.Repository = (*LedgerRepo)(nil)
