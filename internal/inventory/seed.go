package inventory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mamadbah2/paintstock/internal/domain/models"
)

// Seed is the on-disk shape of an initial catalog and ledger.
type Seed struct {
	Items        []models.StockItem   `json:"items"`
	Transactions []models.Transaction `json:"transactions"`
}

// LoadSeed reads a seed file. An empty path yields an empty seed.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return Seed{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(seed.Items))
	for _, item := range seed.Items {
		if _, dup := seen[item.ID]; dup {
			return Seed{}, fmt.Errorf("seed item %s: %w", item.ID, ErrDuplicateItem)
		}
		seen[item.ID] = struct{}{}
	}

	return seed, nil
}
