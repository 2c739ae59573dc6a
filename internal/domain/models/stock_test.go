package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerFilterMatches(t *testing.T) {
	cases := []struct {
		filter LedgerFilter
		kind   MovementKind
		want   bool
	}{
		{FilterAll, MovementIn, true},
		{FilterAll, MovementOut, true},
		{FilterAll, MovementReturn, true},
		{FilterIn, MovementIn, true},
		{FilterIn, MovementReturn, true},
		{FilterIn, MovementOut, false},
		{FilterOut, MovementOut, true},
		{FilterOut, MovementIn, false},
		{FilterOut, MovementReturn, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.filter.Matches(tc.kind), "%s/%s", tc.filter, tc.kind)
	}
}

func TestFilterTransactionsKeepsOrderAndLimit(t *testing.T) {
	txs := []Transaction{
		{ID: "5", Kind: MovementOut},
		{ID: "4", Kind: MovementReturn},
		{ID: "3", Kind: MovementIn},
		{ID: "2", Kind: MovementOut},
		{ID: "1", Kind: MovementIn},
	}

	in := FilterTransactions(txs, FilterIn, 0)
	require.Len(t, in, 3)
	assert.Equal(t, []string{"4", "3", "1"}, []string{in[0].ID, in[1].ID, in[2].ID})

	limited := FilterTransactions(txs, FilterAll, 2)
	require.Len(t, limited, 2)
	assert.Equal(t, "5", limited[0].ID)
}

func TestParseLedgerFilter(t *testing.T) {
	f, err := ParseLedgerFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	f, err = ParseLedgerFilter("out")
	require.NoError(t, err)
	assert.Equal(t, FilterOut, f)

	_, err = ParseLedgerFilter("RETURN")
	assert.Error(t, err)
}

func TestParseUnitAliases(t *testing.T) {
	for input, want := range map[string]Unit{
		"Galões":   UnitGallons,
		"litros":   UnitLiters,
		"LATAS":    UnitCans,
		"Unidades": UnitUnits,
		"cans":     UnitCans,
	} {
		got, err := ParseUnit(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseUnit("barrels")
	assert.Error(t, err)
}

func TestTransactionDelta(t *testing.T) {
	qty := decimal.RequireFromString("2.5")
	assert.True(t, Transaction{Kind: MovementIn, Quantity: qty}.Delta().Equal(qty))
	assert.True(t, Transaction{Kind: MovementReturn, Quantity: qty}.Delta().Equal(qty))
	assert.True(t, Transaction{Kind: MovementOut, Quantity: qty}.Delta().Equal(qty.Neg()))
}

func TestSummarize(t *testing.T) {
	items := []StockItem{
		{ID: "a", Quantity: decimal.NewFromInt(10), MinStock: decimal.NewFromInt(5)},
		{ID: "b", Quantity: decimal.NewFromInt(5), MinStock: decimal.NewFromInt(5)},
		{ID: "c", Quantity: decimal.NewFromInt(-2), MinStock: decimal.NewFromInt(0)},
	}

	summary := Summarize(items)
	assert.True(t, summary.TotalQuantity.Equal(decimal.NewFromInt(13)))
	assert.Equal(t, 3, summary.ItemCount)
	assert.Equal(t, 2, summary.LowStockCount)

	empty := Summarize(nil)
	assert.True(t, empty.TotalQuantity.IsZero())
	assert.Equal(t, 0, empty.ItemCount)
}

func TestSuggestReorders(t *testing.T) {
	items := []StockItem{
		{ID: "ok", Quantity: decimal.NewFromInt(20), MinStock: decimal.NewFromInt(5)},
		{ID: "low", Quantity: decimal.NewFromInt(3), MinStock: decimal.NewFromInt(5)},
		{ID: "negative", Quantity: decimal.NewFromInt(-4), MinStock: decimal.NewFromInt(2)},
	}

	suggestions := SuggestReorders(items)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "low", suggestions[0].Item.ID)
	assert.True(t, suggestions[0].SuggestedAmount.Equal(decimal.NewFromInt(7)))
	assert.True(t, suggestions[1].SuggestedAmount.Equal(decimal.NewFromInt(8)))
}
