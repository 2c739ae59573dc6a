package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Unit enumerates the units of measure a paint can be stocked in.
type Unit string

const (
	UnitGallons Unit = "GALLONS"
	UnitLiters  Unit = "LITERS"
	UnitCans    Unit = "CANS"
	UnitUnits   Unit = "UNITS"
)

// ParseUnit normalizes free-form unit input. The Portuguese labels used on the
// shop floor are accepted as aliases.
func ParseUnit(value string) (Unit, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(UnitGallons), "GALÕES", "GALOES":
		return UnitGallons, nil
	case string(UnitLiters), "LITROS":
		return UnitLiters, nil
	case string(UnitCans), "LATAS":
		return UnitCans, nil
	case string(UnitUnits), "UNIDADES":
		return UnitUnits, nil
	default:
		return "", fmt.Errorf("unknown unit %q", value)
	}
}

// Label is the shop-floor name of the unit.
func (u Unit) Label() string {
	switch u {
	case UnitGallons:
		return "galões"
	case UnitLiters:
		return "litros"
	case UnitCans:
		return "latas"
	case UnitUnits:
		return "unidades"
	default:
		return strings.ToLower(string(u))
	}
}

// MovementKind enumerates stock movement categories.
type MovementKind string

const (
	MovementIn     MovementKind = "IN"
	MovementOut    MovementKind = "OUT"
	MovementReturn MovementKind = "RETURN"
)

// ParseMovementKind validates a movement kind.
func ParseMovementKind(value string) (MovementKind, error) {
	switch kind := MovementKind(strings.ToUpper(strings.TrimSpace(value))); kind {
	case MovementIn, MovementOut, MovementReturn:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown movement kind %q", value)
	}
}

// Sign returns +1 for inbound movements (IN, RETURN) and -1 for OUT.
func (k MovementKind) Sign() int32 {
	if k == MovementOut {
		return -1
	}
	return 1
}

// Inbound reports whether the movement adds stock.
func (k MovementKind) Inbound() bool {
	return k.Sign() > 0
}

// StockItem is one paint in the catalog.
type StockItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Type     string          `json:"type"`
	ColorHex string          `json:"color_hex"`
	SKU      string          `json:"sku"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     Unit            `json:"unit"`
	MinStock decimal.Decimal `json:"min_stock"`
}

// LowStock reports whether the item sits at or below its minimum threshold.
func (i StockItem) LowStock() bool {
	return i.Quantity.LessThanOrEqual(i.MinStock)
}

// ItemDraft carries caller supplied fields for a new catalog item. Nil
// quantities fall back to the catalog defaults.
type ItemDraft struct {
	Name     string           `json:"name" binding:"required"`
	Category string           `json:"category"`
	Type     string           `json:"type"`
	ColorHex string           `json:"color_hex"`
	Quantity *decimal.Decimal `json:"quantity"`
	Unit     Unit             `json:"unit"`
	MinStock *decimal.Decimal `json:"min_stock"`
}

// Transaction is an immutable stock movement. Item name, unit and color are
// captured when the movement is registered and are not kept in sync with
// later catalog edits.
type Transaction struct {
	ID          string          `json:"id"`
	ItemID      string          `json:"item_id"`
	ItemName    string          `json:"item_name"`
	Kind        MovementKind    `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        Unit            `json:"unit"`
	Responsible string          `json:"responsible"`
	DocNumber   string          `json:"doc_number"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	ColorHex    string          `json:"color_hex"`
}

// Delta is the signed quantity the transaction applies to its item.
func (t Transaction) Delta() decimal.Decimal {
	return t.Quantity.Mul(decimal.NewFromInt32(t.Kind.Sign()))
}

// StockSummary is derived from the catalog on every read.
type StockSummary struct {
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	ItemCount     int             `json:"item_count"`
	LowStockCount int             `json:"low_stock_count"`
}

// Summarize computes the stock summary of a catalog.
func Summarize(items []StockItem) StockSummary {
	summary := StockSummary{TotalQuantity: decimal.Zero, ItemCount: len(items)}
	for _, item := range items {
		summary.TotalQuantity = summary.TotalQuantity.Add(item.Quantity)
		if item.LowStock() {
			summary.LowStockCount++
		}
	}
	return summary
}
