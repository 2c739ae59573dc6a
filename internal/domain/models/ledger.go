package models

import (
	"fmt"
	"strings"
)

// LedgerFilter selects movements for the reports view.
type LedgerFilter string

const (
	FilterAll LedgerFilter = "ALL"
	FilterIn  LedgerFilter = "IN"
	FilterOut LedgerFilter = "OUT"
)

// ParseLedgerFilter accepts ALL, IN or OUT. Empty input means ALL.
func ParseLedgerFilter(value string) (LedgerFilter, error) {
	switch filter := LedgerFilter(strings.ToUpper(strings.TrimSpace(value))); filter {
	case "":
		return FilterAll, nil
	case FilterAll, FilterIn, FilterOut:
		return filter, nil
	default:
		return "", fmt.Errorf("unknown ledger filter %q", value)
	}
}

// Matches reports whether a movement of the given kind passes the filter.
// IN also passes RETURN movements.
func (f LedgerFilter) Matches(kind MovementKind) bool {
	switch f {
	case FilterIn:
		return kind == MovementIn || kind == MovementReturn
	case FilterOut:
		return kind == MovementOut
	default:
		return true
	}
}

// FilterTransactions returns the transactions passing the filter, keeping
// ledger order. A non-positive limit returns every match.
func FilterTransactions(txs []Transaction, filter LedgerFilter, limit int) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if !filter.Matches(tx.Kind) {
			continue
		}
		out = append(out, tx)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
