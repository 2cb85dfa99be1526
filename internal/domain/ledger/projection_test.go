package ledger

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/variant"
)

var testClock = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func testVariant(sku, productName string) variant.Variant {
	return variant.Variant{
		ID:                   id.New(),
		SKU:                  sku,
		ProductID:            id.New(),
		ProductName:          productName,
		TrackInventory:       true,
		UnitSymbol:           "pcs",
		UnitConversionFactor: decimal.NewFromInt(1),
	}
}

// testLine builds a confirmed line at the given storage, occurring `seq`
// minutes after the test clock so ordering within a test is explicit.
func testLine(variantID id.ID, txType TransactionType, qty string, storageID id.ID, storageName string, seq int) Line {
	name := storageName
	return Line{
		LineID:            id.New(),
		TransactionID:     id.New(),
		DocumentNumber:    "DOC-" + qty,
		TransactionType:   txType,
		OccurredAt:        testClock.Add(time.Duration(seq) * time.Minute),
		VariantID:         variantID,
		Quantity:          dec(qty),
		UnitOfMeasure:     "pcs",
		SourceStorageID:   &storageID,
		SourceStorageName: &name,
	}
}

func TestBuild_ReceiveThenSell(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	v.MinimumStock = dec("10")
	wh := id.New()

	lines := []Line{
		testLine(v.ID, TypePurchase, "15", wh, "Main", 0),
		testLine(v.ID, TypeSale, "8", wh, "Main", 1),
	}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{})
	require.Len(t, rows, 1)
	row := rows[0]

	assert.True(t, row.TotalStock.Equal(dec("7")), "total = %s", row.TotalStock)
	assert.True(t, row.AvailableStock.Equal(dec("7")))
	assert.True(t, row.IsBelowMinimum)

	require.Len(t, row.StorageBreakdown, 1)
	assert.Equal(t, wh, row.StorageBreakdown[0].StorageID)
	assert.True(t, row.StorageBreakdown[0].Quantity.Equal(dec("7")))

	require.Len(t, row.Movements, 2)
	assert.Equal(t, TypeSale, row.Movements[0].TransactionType)
	assert.Equal(t, DirectionOut, row.Movements[0].Direction)
	assert.Equal(t, TypePurchase, row.Movements[1].TransactionType)

	require.NotNil(t, row.LastMovementType)
	assert.Equal(t, TypeSale, *row.LastMovementType)
	require.NotNil(t, row.LastMovementDirection)
	assert.Equal(t, DirectionOut, *row.LastMovementDirection)
	require.NotNil(t, row.LastMovementAt)
	assert.True(t, row.LastMovementAt.Equal(lines[1].OccurredAt))
}

func TestBuild_NonMovingTypesIgnored(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh := id.New()

	lines := []Line{
		testLine(v.ID, TypePurchase, "15", wh, "Main", 0),
		testLine(v.ID, TypeSale, "8", wh, "Main", 1),
		testLine(v.ID, TypePurchaseOrder, "100", wh, "Main", 2),
		testLine(v.ID, TypePaymentIn, "999", wh, "Main", 3),
		testLine(v.ID, TransactionType("SOMETHING_NEW"), "50", wh, "Main", 4),
	}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{})
	require.Len(t, rows, 1)

	assert.True(t, rows[0].TotalStock.Equal(dec("7")))
	assert.Len(t, rows[0].Movements, 2, "non-moving lines never enter the feed")
}

func TestBuild_TransferBetweenStorages(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh1, wh2 := id.New(), id.New()

	lines := []Line{
		testLine(v.ID, TypePurchase, "5", wh1, "Alpha", 0),
		testLine(v.ID, TypeTransferOut, "5", wh1, "Alpha", 1),
		testLine(v.ID, TypeTransferIn, "5", wh2, "Beta", 2),
	}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{})
	require.Len(t, rows, 1)
	row := rows[0]

	assert.True(t, row.TotalStock.Equal(dec("5")), "transfer pair must not change the total")

	require.Len(t, row.StorageBreakdown, 2)
	byStorage := map[id.ID]decimal.Decimal{}
	for _, entry := range row.StorageBreakdown {
		byStorage[entry.StorageID] = entry.Quantity
	}
	assert.True(t, byStorage[wh1].Equal(dec("0")))
	assert.True(t, byStorage[wh2].Equal(dec("5")))
}

func TestBuild_ZeroRowSuppression(t *testing.T) {
	v := testVariant("SKU-1", "Widget")

	rows := Build([]variant.Variant{v}, nil, BuildOptions{IncludeZero: false})
	assert.Empty(t, rows)

	rows = Build([]variant.Variant{v}, nil, BuildOptions{IncludeZero: true})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].TotalStock.IsZero())
	assert.Empty(t, rows[0].StorageBreakdown)
	assert.Empty(t, rows[0].Movements)
	assert.Nil(t, rows[0].LastMovementAt)
	assert.Nil(t, rows[0].PrimaryStorageName)
}

func TestBuild_ZeroTotalWithMovementsIsKept(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh := id.New()

	lines := []Line{
		testLine(v.ID, TypePurchase, "5", wh, "Main", 0),
		testLine(v.ID, TypeSale, "5", wh, "Main", 1),
	}

	// Zero total, but the activity itself is information.
	rows := Build([]variant.Variant{v}, lines, BuildOptions{IncludeZero: false})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].TotalStock.IsZero())
	assert.Len(t, rows[0].Movements, 2)
}

func TestBuild_ZeroQuantityLineIgnored(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh := id.New()

	lines := []Line{testLine(v.ID, TypePurchase, "0", wh, "Main", 0)}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{IncludeZero: false})
	assert.Empty(t, rows, "zero-quantity lines produce neither stock nor movements")
}

func TestBuild_NegativeRecordedQuantityNormalized(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh := id.New()

	// Some writers record OUT lines with a negative sign already applied.
	// The direction decides the sign; the recorded sign is ignored.
	lines := []Line{
		testLine(v.ID, TypePurchase, "10", wh, "Main", 0),
		testLine(v.ID, TypeSale, "-4", wh, "Main", 1),
	}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].TotalStock.Equal(dec("6")))
	assert.True(t, rows[0].Movements[0].Quantity.Equal(dec("4")), "feed quantities are absolute")
}

func TestBuild_ThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name         string
		minimum      string
		reorder      string
		stock        string
		belowMin     bool
		belowReorder bool
	}{
		{"at minimum is not below", "10", "0", "10", false, false},
		{"under minimum is below", "10", "0", "9", true, false},
		{"at reorder point flags", "0", "5", "5", false, true},
		{"above reorder point does not", "0", "5", "6", false, false},
		{"zero thresholds never flag", "0", "0", "-3", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testVariant("SKU-1", "Widget")
			v.MinimumStock = dec(tt.minimum)
			v.ReorderPoint = dec(tt.reorder)
			wh := id.New()

			var lines []Line
			if dec(tt.stock).IsNegative() {
				lines = []Line{testLine(v.ID, TypeSale, dec(tt.stock).Abs().String(), wh, "Main", 0)}
			} else {
				lines = []Line{testLine(v.ID, TypePurchase, tt.stock, wh, "Main", 0)}
			}

			rows := Build([]variant.Variant{v}, lines, BuildOptions{IncludeZero: true})
			require.Len(t, rows, 1)
			assert.Equal(t, tt.belowMin, rows[0].IsBelowMinimum, "IsBelowMinimum")
			assert.Equal(t, tt.belowReorder, rows[0].IsBelowReorder, "IsBelowReorder")
		})
	}
}

func TestBuild_MovementFeedCap(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh := id.New()

	lines := make([]Line, 0, 40)
	for i := 0; i < 40; i++ {
		lines = append(lines, testLine(v.ID, TypePurchase, "1", wh, "Main", i))
	}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{})
	require.Len(t, rows, 1)
	row := rows[0]

	assert.True(t, row.TotalStock.Equal(dec("40")), "totals fold every line, not just the feed")
	require.Len(t, row.Movements, MovementFeedCap)

	for i := 1; i < len(row.Movements); i++ {
		assert.False(t, row.Movements[i].OccurredAt.After(row.Movements[i-1].OccurredAt),
			"feed must be time-descending")
	}
	assert.True(t, row.Movements[0].OccurredAt.Equal(lines[39].OccurredAt))
	require.NotNil(t, row.LastMovementAt)
	assert.True(t, row.LastMovementAt.Equal(lines[39].OccurredAt))
}

func TestBuild_BranchRowFilter(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh1, wh2 := id.New(), id.New()

	lines := []Line{testLine(v.ID, TypePurchase, "5", wh1, "Alpha", 0)}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{
		BranchStorageIDs: map[id.ID]struct{}{wh2: {}},
	})
	assert.Empty(t, rows, "activity only outside the branch must not produce a row")

	rows = Build([]variant.Variant{v}, lines, BuildOptions{
		BranchStorageIDs: map[id.ID]struct{}{wh1: {}},
	})
	assert.Len(t, rows, 1)
}

func TestBuild_TriageOrdering(t *testing.T) {
	healthy := testVariant("SKU-A", "Apple")
	belowReorder := testVariant("SKU-B", "Zebra")
	belowReorder.ReorderPoint = dec("10")
	belowMin := testVariant("SKU-C", "Mango")
	belowMin.MinimumStock = dec("10")

	wh := id.New()
	lines := []Line{
		testLine(healthy.ID, TypePurchase, "100", wh, "Main", 0),
		testLine(belowReorder.ID, TypePurchase, "8", wh, "Main", 1),
		testLine(belowMin.ID, TypePurchase, "3", wh, "Main", 2),
	}

	rows := Build([]variant.Variant{healthy, belowReorder, belowMin}, lines, BuildOptions{})
	require.Len(t, rows, 3)

	assert.Equal(t, "SKU-C", rows[0].SKU, "below-minimum first")
	assert.Equal(t, "SKU-B", rows[1].SKU, "below-reorder second")
	assert.Equal(t, "SKU-A", rows[2].SKU)
}

func TestBuild_NameOrderingIsCaseInsensitive(t *testing.T) {
	a := testVariant("SKU-2", "apple")
	b := testVariant("SKU-1", "Banana")
	wh := id.New()

	lines := []Line{
		testLine(a.ID, TypePurchase, "1", wh, "Main", 0),
		testLine(b.ID, TypePurchase, "1", wh, "Main", 1),
	}

	rows := Build([]variant.Variant{b, a}, lines, BuildOptions{})
	require.Len(t, rows, 2)
	assert.Equal(t, "apple", rows[0].ProductName)
	assert.Equal(t, "Banana", rows[1].ProductName)
}

func TestBuild_BreakdownSortedByAbsoluteQuantity(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh1, wh2 := id.New(), id.New()

	lines := []Line{
		testLine(v.ID, TypePurchase, "3", wh1, "Small", 0),
		testLine(v.ID, TypeSale, "10", wh2, "Drained", 1),
	}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{})
	require.Len(t, rows, 1)
	row := rows[0]

	require.Len(t, row.StorageBreakdown, 2)
	assert.Equal(t, "Drained", row.StorageBreakdown[0].StorageName,
		"larger absolute quantity first, even when negative")
	assert.Equal(t, "Small", row.StorageBreakdown[1].StorageName)

	require.NotNil(t, row.PrimaryStorageName)
	assert.Equal(t, "Drained", *row.PrimaryStorageName)
	assert.True(t, row.PrimaryStorageQuantity.Equal(dec("-10")))
}

func TestBuild_UnitConversionAndValuation(t *testing.T) {
	v := testVariant("BOX-1", "Screws")
	v.UnitSymbol = "box"
	v.UnitConversionFactor = dec("12")
	v.BaseCost = dec("2.5")

	wh := id.New()
	line := testLine(v.ID, TypePurchase, "7", wh, "Main", 0)
	line.UnitConversionFactor = nullDec("12")

	rows := Build([]variant.Variant{v}, []Line{line}, BuildOptions{})
	require.Len(t, rows, 1)
	row := rows[0]

	assert.True(t, row.TotalStock.Equal(dec("7")))
	assert.True(t, row.TotalStockBase.Equal(dec("84")))
	assert.True(t, row.TotalValue.Equal(dec("17.50")), "TotalValue = %s", row.TotalValue)
	assert.True(t, row.TotalValueBase.Equal(dec("17.50")), "TotalValueBase = %s", row.TotalValueBase)
}

func TestBuild_SnapshotBaseQuantityWins(t *testing.T) {
	v := testVariant("BOX-1", "Screws")
	v.UnitConversionFactor = dec("12")

	wh := id.New()
	line := testLine(v.ID, TypePurchase, "3", wh, "Main", 0)
	line.UnitConversionFactor = nullDec("10") // snapshot factor at transaction time
	line.QuantityInBase = nullDec("30")

	rows := Build([]variant.Variant{v}, []Line{line}, BuildOptions{})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].TotalStockBase.Equal(dec("30")),
		"historical base quantity must not be recomputed from the current factor")
}

func TestBuild_LinesForOtherVariantsIgnored(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh := id.New()

	lines := []Line{testLine(id.New(), TypePurchase, "100", wh, "Main", 0)}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{IncludeZero: true})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].TotalStock.IsZero())
}

func TestBuild_MovementReasonFromMetadata(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh := id.New()

	line := testLine(v.ID, TypeAdjustmentOut, "2", wh, "Main", 0)
	line.Metadata = Metadata{"withdrawalReason": "damaged in transit"}

	rows := Build([]variant.Variant{v}, []Line{line}, BuildOptions{})
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Movements, 1)
	require.NotNil(t, rows[0].Movements[0].Reason)
	assert.Equal(t, "damaged in transit", *rows[0].Movements[0].Reason)
}

// The scalar balance endpoint computes the conditional sum in SQL, with ABS
// applied to each line. This test checks the property that makes the two paths
// interchangeable: a per-storage conditional sum over the same lines equals
// the projection's breakdown entry, including lines whose writers already
// recorded a negative sign.
func TestBuild_BreakdownMatchesConditionalSum(t *testing.T) {
	v := testVariant("SKU-1", "Widget")
	wh := id.New()

	lines := []Line{
		testLine(v.ID, TypePurchase, "20", wh, "Main", 0),
		testLine(v.ID, TypeSale, "3.5", wh, "Main", 1),
		testLine(v.ID, TypeSale, "-2", wh, "Main", 2),
		testLine(v.ID, TypeSaleReturn, "0.5", wh, "Main", 3),
		testLine(v.ID, TypePurchaseOrder, "99", wh, "Main", 4),
		testLine(v.ID, TypeAdjustmentOut, "1.25", wh, "Main", 5),
	}

	sum := decimal.Zero
	for _, l := range lines {
		switch Classify(l.TransactionType) {
		case DirectionIn:
			sum = sum.Add(l.Quantity.Abs())
		case DirectionOut:
			sum = sum.Sub(l.Quantity.Abs())
		}
	}

	rows := Build([]variant.Variant{v}, lines, BuildOptions{})
	require.Len(t, rows, 1)
	require.Len(t, rows[0].StorageBreakdown, 1)
	assert.True(t, rows[0].StorageBreakdown[0].Quantity.Equal(sum),
		"breakdown %s, conditional sum %s", rows[0].StorageBreakdown[0].Quantity, sum)
}

func TestBuild_Deterministic(t *testing.T) {
	a := testVariant("SKU-A", "Apple")
	b := testVariant("SKU-B", "Banana")
	wh1, wh2 := id.New(), id.New()

	lines := []Line{
		testLine(a.ID, TypePurchase, "10", wh1, "Alpha", 0),
		testLine(a.ID, TypeSale, "2", wh2, "Beta", 1),
		testLine(b.ID, TypeAdjustmentIn, "4", wh1, "Alpha", 2),
	}

	first := Build([]variant.Variant{a, b}, lines, BuildOptions{})
	second := Build([]variant.Variant{a, b}, lines, BuildOptions{})
	assert.True(t, reflect.DeepEqual(first, second), "identical inputs must produce identical rows")
}

func TestProjectionFilter_IncludeZeroResolved(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name   string
		filter ProjectionFilter
		want   bool
	}{
		{"default without search", ProjectionFilter{}, false},
		{"default with search", ProjectionFilter{Search: "widget"}, true},
		{"explicit false beats search", ProjectionFilter{Search: "widget", IncludeZero: &no}, false},
		{"explicit true without search", ProjectionFilter{IncludeZero: &yes}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.IncludeZeroResolved())
		})
	}
}
