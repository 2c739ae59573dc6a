package stock

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/paintstock/internal/domain/models"
	"github.com/mamadbah2/paintstock/internal/inventory"
)

func newTestService(t *testing.T) (*Service, *inventory.Store) {
	t.Helper()
	store := inventory.NewStore(inventory.WithSeed([]models.StockItem{
		{
			ID: "1", Name: "Acrílica Premium", ColorHex: "#ffffff", SKU: "SKU-1001",
			Quantity: decimal.NewFromInt(10), MinStock: decimal.NewFromInt(5), Unit: models.UnitGallons,
		},
	}, nil))

	svc := NewService(store, time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 14, 7, 0, 0, time.UTC) }
	return svc, store
}

func TestRegisterExitSnapshotsItem(t *testing.T) {
	svc, store := newTestService(t)

	tx, err := svc.RegisterExit(models.MovementRequest{
		ItemID: "1", Quantity: "3", Responsible: " Carlos ", DocNumber: "OS-77",
	})
	require.NoError(t, err)

	assert.Equal(t, models.MovementOut, tx.Kind)
	assert.Equal(t, "Acrílica Premium", tx.ItemName)
	assert.Equal(t, models.UnitGallons, tx.Unit)
	assert.Equal(t, "#ffffff", tx.ColorHex)
	assert.Equal(t, "Carlos", tx.Responsible)
	assert.Equal(t, "2024-03-15", tx.Date)
	assert.Equal(t, "14:07", tx.Time)
	assert.NotEmpty(t, tx.ID)

	item, _ := store.Item("1")
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(7)))
}

func TestSnapshotSurvivesItemEdit(t *testing.T) {
	svc, _ := newTestService(t)

	tx, err := svc.RegisterEntry(models.MovementRequest{ItemID: "1", Quantity: "1"})
	require.NoError(t, err)

	item, _ := svc.Item("1")
	item.Name = "Renamed"
	_, err = svc.EditItem("1", item)
	require.NoError(t, err)

	ledger := svc.Movements(models.FilterAll, 0)
	require.Len(t, ledger, 1)
	assert.Equal(t, tx.ID, ledger[0].ID)
	assert.Equal(t, "Acrílica Premium", ledger[0].ItemName)
}

func TestRegisterEntryKinds(t *testing.T) {
	svc, store := newTestService(t)

	tx, err := svc.RegisterEntry(models.MovementRequest{ItemID: "1", Quantity: "2.5", Kind: "return", Date: "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, models.MovementReturn, tx.Kind)
	assert.Equal(t, "2024-03-01", tx.Date)

	item, _ := store.Item("1")
	assert.True(t, item.Quantity.Equal(decimal.RequireFromString("12.5")))

	_, err = svc.RegisterEntry(models.MovementRequest{ItemID: "1", Quantity: "1", Kind: "OUT"})
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestRegisterRejectsMalformedInput(t *testing.T) {
	svc, _ := newTestService(t)

	for name, req := range map[string]models.MovementRequest{
		"missing item":  {Quantity: "1"},
		"non numeric":   {ItemID: "1", Quantity: "abc"},
		"zero quantity": {ItemID: "1", Quantity: "0"},
		"negative":      {ItemID: "1", Quantity: "-2"},
		"bad date":      {ItemID: "1", Quantity: "1", Date: "15/03/2024"},
	} {
		_, err := svc.RegisterExit(req)
		assert.ErrorIs(t, err, ErrInvalidArguments, name)
	}
	assert.Empty(t, svc.Movements(models.FilterAll, 0))
}

func TestRegisterUnknownItemStillLogsMovement(t *testing.T) {
	svc, store := newTestService(t)

	tx, err := svc.RegisterEntry(models.MovementRequest{ItemID: "deleted", Quantity: "4"})
	require.NoError(t, err)
	assert.Empty(t, tx.ItemName)

	item, _ := store.Item("1")
	assert.True(t, item.Quantity.Equal(decimal.NewFromInt(10)))
	assert.Len(t, svc.Movements(models.FilterAll, 0), 1)
}

func TestAddItemValidation(t *testing.T) {
	svc, _ := newTestService(t)

	item, err := svc.AddItem(models.ItemDraft{Name: "Esmalte", Unit: "Latas"})
	require.NoError(t, err)
	assert.Equal(t, models.UnitCans, item.Unit)

	_, err = svc.AddItem(models.ItemDraft{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidArguments)

	_, err = svc.AddItem(models.ItemDraft{Name: "x", Unit: "barrels"})
	assert.ErrorIs(t, err, ErrInvalidArguments)

	negative := decimal.NewFromInt(-1)
	_, err = svc.AddItem(models.ItemDraft{Name: "x", MinStock: &negative})
	assert.ErrorIs(t, err, ErrInvalidArguments)
}

func TestDeleteItemRequiresConfirmation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.DeleteItem("1", false)
	assert.ErrorIs(t, err, inventory.ErrDeleteNotConfirmed)
	assert.Len(t, svc.Items(), 1)

	_, err = svc.DeleteItem("1", true)
	require.NoError(t, err)
	assert.Empty(t, svc.Items())
}

func TestDashboardAndReorders(t *testing.T) {
	svc, _ := newTestService(t)

	for i := 0; i < 7; i++ {
		_, err := svc.RegisterExit(models.MovementRequest{ItemID: "1", Quantity: "1"})
		require.NoError(t, err)
	}

	dash := svc.Dashboard()
	assert.Len(t, dash.Recent, 5)
	assert.Equal(t, 1, dash.Summary.LowStockCount)
	assert.True(t, dash.Summary.TotalQuantity.Equal(decimal.NewFromInt(3)))

	suggestions := svc.ReorderSuggestions()
	require.Len(t, suggestions, 1)
	assert.True(t, suggestions[0].SuggestedAmount.Equal(decimal.NewFromInt(7)))
}
