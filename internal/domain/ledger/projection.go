package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/catalogs/variant"
)

// MovementFeedCap is the number of recent movements kept per row.
const MovementFeedCap = 25

// BuildOptions tunes row-level filtering of the fold result.
type BuildOptions struct {
	// IncludeZero keeps rows with zero stock and no matched movements.
	IncludeZero bool

	// BranchStorageIDs, when non-nil, keeps only rows with at least one
	// breakdown entry at one of these storages. This is a second, row-level
	// filter on top of the line-level scan filter: a variant may have ledger
	// activity at an excluded storage and zero at the requested branch.
	BranchStorageIDs map[id.ID]struct{}
}

// rowAccum holds per-variant running state during the fold.
type rowAccum struct {
	total     decimal.Decimal
	totalBase decimal.Decimal
	breakdown map[id.ID]*StorageStock
	movements []Movement
}

// Build folds scanned lines into one projection row per eligible variant.
// Pure: identical inputs produce identical output, which is what makes the
// "computed, returned, discarded" lifecycle trivially testable.
func Build(variants []variant.Variant, lines []Line, opts BuildOptions) []Row {
	accums := make(map[id.ID]*rowAccum, len(variants))
	for _, v := range variants {
		accums[v.ID] = &rowAccum{
			total:     decimal.Zero,
			totalBase: decimal.Zero,
			breakdown: make(map[id.ID]*StorageStock),
		}
	}

	for _, line := range lines {
		acc, ok := accums[line.VariantID]
		if !ok {
			continue
		}

		direction := Classify(line.TransactionType)
		if direction == DirectionNone || line.Quantity.IsZero() {
			continue
		}

		quantity := line.Quantity.Abs()
		baseQuantity := line.BaseQuantity().Abs()

		signedQuantity := quantity
		signedBase := baseQuantity
		if direction == DirectionOut {
			signedQuantity = signedQuantity.Neg()
			signedBase = signedBase.Neg()
		}

		acc.total = acc.total.Add(signedQuantity)
		acc.totalBase = acc.totalBase.Add(signedBase)

		if line.SourceStorageID != nil {
			entry, ok := acc.breakdown[*line.SourceStorageID]
			if !ok {
				name := ""
				if line.SourceStorageName != nil {
					name = *line.SourceStorageName
				}
				entry = &StorageStock{
					StorageID:    *line.SourceStorageID,
					StorageName:  name,
					BranchID:     line.SourceBranchID,
					BranchName:   line.SourceBranchName,
					Quantity:     decimal.Zero,
					QuantityBase: decimal.Zero,
				}
				acc.breakdown[*line.SourceStorageID] = entry
			}
			entry.Quantity = entry.Quantity.Add(signedQuantity)
			entry.QuantityBase = entry.QuantityBase.Add(signedBase)
		}

		acc.movements = append(acc.movements, Movement{
			TransactionID:     line.TransactionID,
			DocumentNumber:    line.DocumentNumber,
			TransactionType:   line.TransactionType,
			Direction:         direction,
			Quantity:          quantity,
			QuantityBase:      baseQuantity,
			SourceStorageID:   line.SourceStorageID,
			SourceStorageName: line.SourceStorageName,
			SourceBranchName:  line.SourceBranchName,
			TargetStorageID:   line.TargetStorageID,
			TargetStorageName: line.TargetStorageName,
			OccurredAt:        line.OccurredAt,
			Reason:            line.Metadata.Reason(),
		})
	}

	rows := make([]Row, 0, len(variants))
	for _, v := range variants {
		acc := accums[v.ID]
		row, keep := assembleRow(v, acc, opts)
		if keep {
			rows = append(rows, row)
		}
	}

	sortRows(rows)
	return rows
}

// assembleRow derives the final row from fold state and applies the
// row-level drop rules. Returns keep=false when the row is filtered out.
func assembleRow(v variant.Variant, acc *rowAccum, opts BuildOptions) (Row, bool) {
	total := types.RoundQuantity(acc.total)
	totalBase := types.RoundQuantity(acc.totalBase)

	if total.IsZero() && len(acc.movements) == 0 && !opts.IncludeZero {
		return Row{}, false
	}

	breakdown := make([]StorageStock, 0, len(acc.breakdown))
	for _, entry := range acc.breakdown {
		entry.Quantity = types.RoundQuantity(entry.Quantity)
		entry.QuantityBase = types.RoundQuantity(entry.QuantityBase)
		breakdown = append(breakdown, *entry)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		qi, qj := breakdown[i].Quantity.Abs(), breakdown[j].Quantity.Abs()
		if !qi.Equal(qj) {
			return qi.GreaterThan(qj)
		}
		if breakdown[i].StorageName != breakdown[j].StorageName {
			return breakdown[i].StorageName < breakdown[j].StorageName
		}
		return breakdown[i].StorageID.String() < breakdown[j].StorageID.String()
	})

	if opts.BranchStorageIDs != nil {
		inBranch := false
		for _, entry := range breakdown {
			if _, ok := opts.BranchStorageIDs[entry.StorageID]; ok {
				inBranch = true
				break
			}
		}
		if !inBranch {
			return Row{}, false
		}
	}

	movements := make([]Movement, len(acc.movements))
	copy(movements, acc.movements)
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].OccurredAt.After(movements[j].OccurredAt)
	})
	if len(movements) > MovementFeedCap {
		movements = movements[:MovementFeedCap]
	}

	committed := decimal.Zero
	incoming := decimal.Zero

	costPerBase := v.CostPerBaseUnit()

	row := Row{
		VariantID:   v.ID,
		SKU:         v.SKU,
		Barcode:     v.Barcode,
		ProductName: v.ProductName,
		BrandName:   v.BrandName,
		UnitSymbol:  v.UnitSymbol,

		TotalStock:     total,
		TotalStockBase: totalBase,

		CommittedStock: committed,
		IncomingStock:  incoming,
		AvailableStock: total.Sub(committed).Add(incoming),

		MinimumStock: v.MinimumStock,
		ReorderPoint: v.ReorderPoint,

		CostPerBaseUnit: costPerBase,
		TotalValue:      types.RoundMoney(total.Mul(v.BaseCost)),
		TotalValueBase:  types.RoundMoney(totalBase.Mul(costPerBase)),

		IsBelowMinimum: v.MinimumStock.IsPositive() && total.LessThan(v.MinimumStock),
		IsBelowReorder: v.ReorderPoint.IsPositive() && total.LessThanOrEqual(v.ReorderPoint),

		StorageBreakdown:       breakdown,
		PrimaryStorageQuantity: decimal.Zero,

		Movements: movements,
	}

	if len(breakdown) > 0 {
		name := breakdown[0].StorageName
		row.PrimaryStorageName = &name
		row.PrimaryStorageQuantity = breakdown[0].Quantity
	}

	if len(movements) > 0 {
		newest := movements[0]
		row.LastMovementAt = &newest.OccurredAt
		movementType := newest.TransactionType
		row.LastMovementType = &movementType
		movementDirection := newest.Direction
		row.LastMovementDirection = &movementDirection
	}

	return row, true
}

// sortRows applies the triage ordering: operationally urgent rows surface
// first regardless of alphabetical position.
func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := triageRank(rows[i]), triageRank(rows[j])
		if ri != rj {
			return ri < rj
		}
		ni, nj := strings.ToLower(rows[i].ProductName), strings.ToLower(rows[j].ProductName)
		if ni != nj {
			return ni < nj
		}
		return rows[i].SKU < rows[j].SKU
	})
}

func triageRank(r Row) int {
	switch {
	case r.IsBelowMinimum:
		return 0
	case r.IsBelowReorder:
		return 1
	default:
		return 2
	}
}
