package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mamadbah2/paintstock/internal/domain/models"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func seededStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	items := []models.StockItem{
		{ID: "1", Name: "Acrílica Branco Neve", Quantity: dec(10), MinStock: dec(5), Unit: models.UnitGallons},
	}
	return NewStore(append([]Option{WithSeed(items, nil)}, opts...)...)
}

func movement(id, itemID string, kind models.MovementKind, qty int64) models.Transaction {
	return models.Transaction{ID: id, ItemID: itemID, Kind: kind, Quantity: dec(qty)}
}

func TestRecordOutWithinStock(t *testing.T) {
	store := seededStore(t)

	result, err := store.Record(movement("t1", "1", models.MovementOut, 3))
	require.NoError(t, err)
	assert.True(t, result.Matched)
	require.NotNil(t, result.Item)
	assert.True(t, result.Item.Quantity.Equal(dec(7)))

	item, err := store.Item("1")
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(dec(7)))
	assert.Len(t, store.Transactions(models.FilterAll, 0), 1)
	assert.Equal(t, 0, store.Summary().LowStockCount)
}

func TestRecordOutBeyondStockGoesNegative(t *testing.T) {
	store := seededStore(t)

	_, err := store.Record(movement("t1", "1", models.MovementOut, 20))
	require.NoError(t, err)

	item, err := store.Item("1")
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(dec(-10)), "got %s", item.Quantity)
	assert.Equal(t, 1, store.Summary().LowStockCount)
}

func TestRecordReturnAddsStock(t *testing.T) {
	store := NewStore(WithSeed([]models.StockItem{
		{ID: "RETURN-test", Quantity: dec(5), MinStock: dec(1)},
	}, nil))

	_, err := store.Record(movement("t1", "RETURN-test", models.MovementReturn, 2))
	require.NoError(t, err)

	item, err := store.Item("RETURN-test")
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(dec(7)))
}

func TestRecordUnknownItem(t *testing.T) {
	t.Run("default appends and leaves catalog", func(t *testing.T) {
		store := seededStore(t)

		result, err := store.Record(movement("t1", "ghost", models.MovementIn, 4))
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.Nil(t, result.Item)

		item, _ := store.Item("1")
		assert.True(t, item.Quantity.Equal(dec(10)))
		assert.Len(t, store.Transactions(models.FilterAll, 0), 1)
	})

	t.Run("strict references reject", func(t *testing.T) {
		store := seededStore(t, WithStrictReferences())

		_, err := store.Record(movement("t1", "ghost", models.MovementIn, 4))
		assert.ErrorIs(t, err, ErrItemNotFound)
		assert.Empty(t, store.Transactions(models.FilterAll, 0))
	})
}

func TestStockGuard(t *testing.T) {
	store := seededStore(t, WithStockGuard())

	_, err := store.Record(movement("t1", "1", models.MovementOut, 11))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, store.Transactions(models.FilterAll, 0))

	_, err = store.Record(movement("t2", "1", models.MovementOut, 10))
	require.NoError(t, err)
	item, _ := store.Item("1")
	assert.True(t, item.Quantity.IsZero())
}

func TestRecordTouchesQuantityOnly(t *testing.T) {
	original := models.StockItem{
		ID: "1", Name: "Esmalte", Category: "Esmalte", Type: "Sintético", ColorHex: "#ff0000",
		SKU: "SKU-1234", Quantity: dec(3), Unit: models.UnitCans, MinStock: dec(2),
	}
	store := NewStore(WithSeed([]models.StockItem{original}, nil))

	_, err := store.Record(movement("t1", "1", models.MovementIn, 2))
	require.NoError(t, err)

	item, _ := store.Item("1")
	expected := original
	expected.Quantity = dec(5)
	assert.True(t, item.Quantity.Equal(expected.Quantity))
	item.Quantity = expected.Quantity
	assert.Equal(t, expected, item)
}

func TestCreateItemDefaults(t *testing.T) {
	store := NewStore(
		WithIDGenerator(func() string { return "fixed" }),
		WithSKUGenerator(func() string { return "SKU-4242" }),
	)

	item, err := store.CreateItem(models.ItemDraft{Name: "Látex Fosco"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", item.ID)
	assert.Equal(t, "SKU-4242", item.SKU)
	assert.True(t, item.Quantity.IsZero())
	assert.True(t, item.MinStock.Equal(dec(10)))
	assert.Equal(t, models.UnitGallons, item.Unit)

	_, err = store.CreateItem(models.ItemDraft{Name: "again"})
	assert.ErrorIs(t, err, ErrDuplicateItem)
}

func TestCreateItemPrepends(t *testing.T) {
	store := seededStore(t)
	qty := dec(3)

	created, err := store.CreateItem(models.ItemDraft{Name: "Novo", Quantity: &qty})
	require.NoError(t, err)
	assert.Regexp(t, `^SKU-[1-9]\d{3}$`, created.SKU)

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, created.ID, items[0].ID)
	assert.True(t, items[0].Quantity.Equal(qty))
}

func TestUpdateItem(t *testing.T) {
	store := seededStore(t)

	item, _ := store.Item("1")
	item.Name = "Renamed"
	item.MinStock = dec(50)
	_, err := store.UpdateItem(item)
	require.NoError(t, err)

	got, _ := store.Item("1")
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 1, store.Summary().LowStockCount)

	_, err = store.UpdateItem(models.StockItem{ID: "missing"})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDeleteItem(t *testing.T) {
	store := seededStore(t)
	_, err := store.Record(movement("t1", "1", models.MovementOut, 1))
	require.NoError(t, err)
	before := store.Transactions(models.FilterAll, 0)

	t.Run("rejected confirmation has no effect", func(t *testing.T) {
		_, err := store.DeleteItem("1", func(models.StockItem) bool { return false })
		assert.ErrorIs(t, err, ErrDeleteNotConfirmed)
		assert.Len(t, store.Items(), 1)

		_, err = store.DeleteItem("1", nil)
		assert.ErrorIs(t, err, ErrDeleteNotConfirmed)
	})

	t.Run("confirmed delete keeps ledger", func(t *testing.T) {
		var asked models.StockItem
		deleted, err := store.DeleteItem("1", func(item models.StockItem) bool {
			asked = item
			return true
		})
		require.NoError(t, err)
		assert.Equal(t, "1", deleted.ID)
		assert.Equal(t, "1", asked.ID)
		assert.Empty(t, store.Items())
		assert.Equal(t, before, store.Transactions(models.FilterAll, 0))
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := store.DeleteItem("1", func(models.StockItem) bool { return true })
		assert.ErrorIs(t, err, ErrItemNotFound)
	})
}

func TestNextTransactionIDIsMonotonic(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	store := NewStore(
		WithClock(func() time.Time { return fixed }),
		WithSeed(nil, []models.Transaction{{ID: "1700000000005"}}),
	)

	first := store.NextTransactionID()
	second := store.NextTransactionID()
	assert.Equal(t, "1700000000006", first)
	assert.Equal(t, "1700000000007", second)
}

func TestResetRestoresSeed(t *testing.T) {
	store := seededStore(t)
	_, err := store.Record(movement("t1", "1", models.MovementIn, 5))
	require.NoError(t, err)
	_, err = store.CreateItem(models.ItemDraft{Name: "extra"})
	require.NoError(t, err)
	versionBefore := store.Version()

	store.Reset()

	items := store.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].Quantity.Equal(dec(10)))
	assert.Empty(t, store.Transactions(models.FilterAll, 0))
	assert.Greater(t, store.Version(), versionBefore)
}

func TestConcurrentReadersSeeConsistentState(t *testing.T) {
	store := seededStore(t)
	initial := dec(10)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = store.Record(movement(fmt.Sprint(i), "1", models.MovementIn, 1))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			items, ledger, _ := store.Snapshot()
			expected := initial.Add(dec(int64(len(ledger))))
			if !items[0].Quantity.Equal(expected) {
				t.Errorf("snapshot saw %d movements but quantity %s", len(ledger), items[0].Quantity)
				return
			}
		}
	}()
	wg.Wait()
}

func TestLedgerPropertiesHold(t *testing.T) {
	kinds := []models.MovementKind{models.MovementIn, models.MovementOut, models.MovementReturn}

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 5).Draw(t, "items")
		seed := make([]models.StockItem, count)
		ids := make([]string, 0, count+1)
		for i := range seed {
			seed[i] = models.StockItem{
				ID:       fmt.Sprintf("item-%d", i),
				Quantity: dec(rapid.Int64Range(-50, 200).Draw(t, "quantity")),
				MinStock: dec(rapid.Int64Range(0, 50).Draw(t, "min")),
			}
			ids = append(ids, seed[i].ID)
		}
		ids = append(ids, "unknown")

		store := NewStore(WithSeed(seed, nil))
		expected := make(map[string]decimal.Decimal, count)
		for _, item := range seed {
			expected[item.ID] = item.Quantity
		}

		steps := rapid.IntRange(0, 40).Draw(t, "steps")
		var last models.Transaction
		for i := 0; i < steps; i++ {
			tx := models.Transaction{
				ID:       store.NextTransactionID(),
				ItemID:   rapid.SampledFrom(ids).Draw(t, "item"),
				Kind:     rapid.SampledFrom(kinds).Draw(t, "kind"),
				Quantity: dec(rapid.Int64Range(1, 100).Draw(t, "qty")),
			}
			_, err := store.Record(tx)
			require.NoError(t, err)
			if current, ok := expected[tx.ItemID]; ok {
				expected[tx.ItemID] = current.Add(tx.Delta())
			}
			last = tx

			low := 0
			for _, item := range store.Items() {
				if item.Quantity.LessThanOrEqual(item.MinStock) {
					low++
				}
			}
			require.Equal(t, low, store.Summary().LowStockCount)
		}

		ledger := store.Transactions(models.FilterAll, 0)
		require.Len(t, ledger, steps)
		if steps > 0 {
			require.Equal(t, last.ID, ledger[0].ID)
		}
		for _, item := range store.Items() {
			require.True(t, expected[item.ID].Equal(item.Quantity), "item %s: want %s got %s", item.ID, expected[item.ID], item.Quantity)
		}
		require.Equal(t, count, store.Summary().ItemCount)
	})
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "seed.json")
		body := `{"items":[{"id":"1","name":"Látex","quantity":"12.5","min_stock":"5","unit":"LITERS"}],
			"transactions":[{"id":"100","item_id":"1","type":"IN","quantity":"2"}]}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

		seed, err := LoadSeed(path)
		require.NoError(t, err)
		require.Len(t, seed.Items, 1)
		assert.True(t, seed.Items[0].Quantity.Equal(decimal.RequireFromString("12.5")))
		require.Len(t, seed.Transactions, 1)
		assert.Equal(t, models.MovementIn, seed.Transactions[0].Kind)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		path := filepath.Join(dir, "dup.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"items":[{"id":"1"},{"id":"1"}]}`), 0o600))

		_, err := LoadSeed(path)
		assert.ErrorIs(t, err, ErrDuplicateItem)
	})

	t.Run("empty path", func(t *testing.T) {
		seed, err := LoadSeed("")
		require.NoError(t, err)
		assert.Empty(t, seed.Items)
	})
}
