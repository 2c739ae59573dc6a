package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Insight is the advisor's read of the current stock.
type Insight struct {
	Alerts []string `json:"alerts"`
	Trend  string   `json:"trend"`
	Tips   []string `json:"tips"`
}

// ReorderSuggestion proposes a purchase for an item at or below its minimum.
type ReorderSuggestion struct {
	Item            StockItem       `json:"item"`
	SuggestedAmount decimal.Decimal `json:"suggested_amount"`
}

// StockSnapshot represents the aggregated daily stock position stored in MongoDB.
type StockSnapshot struct {
	Date          time.Time          `bson:"date" json:"date"`
	TotalQuantity string             `bson:"total_quantity" json:"total_quantity"`
	ItemCount     int                `bson:"item_count" json:"item_count"`
	LowStockCount int                `bson:"low_stock_count" json:"low_stock_count"`
	Inbound       string             `bson:"inbound" json:"inbound"`
	Outbound      string             `bson:"outbound" json:"outbound"`
	Movements     int                `bson:"movements" json:"movements"`
	LowStock      []LowStockSnapshot `bson:"low_stock" json:"low_stock"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// LowStockSnapshot is the per-item part of a StockSnapshot.
type LowStockSnapshot struct {
	ItemID   string `bson:"item_id" json:"item_id"`
	Name     string `bson:"name" json:"name"`
	Quantity string `bson:"quantity" json:"quantity"`
	MinStock string `bson:"min_stock" json:"min_stock"`
}

// SuggestReorders lists low-stock items in catalog order with the amount that
// brings each back to twice its minimum.
func SuggestReorders(items []StockItem) []ReorderSuggestion {
	two := decimal.NewFromInt(2)
	suggestions := make([]ReorderSuggestion, 0)
	for _, item := range items {
		if !item.LowStock() {
			continue
		}
		amount := item.MinStock.Mul(two).Sub(item.Quantity)
		if amount.IsNegative() {
			amount = decimal.Zero
		}
		suggestions = append(suggestions, ReorderSuggestion{Item: item, SuggestedAmount: amount})
	}
	return suggestions
}
