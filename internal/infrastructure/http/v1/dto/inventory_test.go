package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
)

func TestFromRow_NullsAreExplicit(t *testing.T) {
	row := ledger.Row{
		VariantID:   id.New(),
		SKU:         "SKU-1",
		ProductName: "Widget",
		UnitSymbol:  "pcs",
	}

	raw, err := json.Marshal(FromRow(row))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// Optional fields must be present as null, never omitted.
	for _, key := range []string{
		"barcode", "brandName",
		"primaryStorageName",
		"lastMovementAt", "lastMovementType", "lastMovementDirection",
	} {
		v, present := decoded[key]
		assert.True(t, present, "key %q must be present", key)
		assert.Nil(t, v, "key %q must be null", key)
	}

	// Zero collections serialize as [], not null.
	assert.NotNil(t, decoded["storageBreakdown"])
	assert.NotNil(t, decoded["movements"])

	// Numbers are plain JSON numbers.
	assert.Equal(t, float64(0), decoded["totalStock"])
	assert.Equal(t, float64(0), decoded["availableStock"])
}

func TestFromRow_ConvertsValues(t *testing.T) {
	storageID := id.New()
	branchName := "HQ"
	occurredAt := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	movementType := ledger.TypeSale
	direction := ledger.DirectionOut

	row := ledger.Row{
		VariantID:   id.New(),
		SKU:         "SKU-1",
		ProductName: "Widget",
		TotalStock:  decimal.RequireFromString("7.25"),
		TotalValue:  decimal.RequireFromString("18.13"),
		StorageBreakdown: []ledger.StorageStock{{
			StorageID:   storageID,
			StorageName: "Main",
			BranchName:  &branchName,
			Quantity:    decimal.RequireFromString("7.25"),
		}},
		Movements: []ledger.Movement{{
			TransactionID:   id.New(),
			DocumentNumber:  "SO-001",
			TransactionType: ledger.TypeSale,
			Direction:       ledger.DirectionOut,
			Quantity:        decimal.RequireFromString("2"),
			OccurredAt:      occurredAt,
		}},
		LastMovementAt:        &occurredAt,
		LastMovementType:      &movementType,
		LastMovementDirection: &direction,
	}

	resp := FromRow(row)

	assert.Equal(t, 7.25, resp.TotalStock)
	assert.Equal(t, 18.13, resp.TotalValue)

	require.Len(t, resp.StorageBreakdown, 1)
	assert.Equal(t, storageID.String(), resp.StorageBreakdown[0].StorageID)
	assert.Equal(t, 7.25, resp.StorageBreakdown[0].Quantity)

	require.Len(t, resp.Movements, 1)
	assert.Equal(t, "SALE", resp.Movements[0].TransactionType)
	assert.Equal(t, "OUT", resp.Movements[0].Direction)

	require.NotNil(t, resp.LastMovementType)
	assert.Equal(t, "SALE", *resp.LastMovementType)
	require.NotNil(t, resp.LastMovementDirection)
	assert.Equal(t, "OUT", *resp.LastMovementDirection)
}

func TestFromRows_CountsItems(t *testing.T) {
	rows := []ledger.Row{
		{VariantID: id.New(), SKU: "A"},
		{VariantID: id.New(), SKU: "B"},
	}

	resp := FromRows(rows)

	assert.Equal(t, 2, resp.TotalItems)
	require.Len(t, resp.Items, 2)

	empty := FromRows(nil)
	assert.Equal(t, 0, empty.TotalItems)
	assert.NotNil(t, empty.Items)
}
