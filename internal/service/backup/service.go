package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/domain/models"
)

const (
	catalogRange = "Catalog!A:I"
	ledgerRange  = "Ledger!A:K"
)

// ErrDisabled is returned when no spreadsheet is configured.
var ErrDisabled = errors.New("backup export not configured")

// Spreadsheet is the spreadsheet side of the export.
type Spreadsheet interface {
	ClearRange(ctx context.Context, sheetRange string) error
	WriteRows(ctx context.Context, sheetRange string, rows [][]interface{}) error
	ReadRange(ctx context.Context, sheetRange string) ([][]interface{}, error)
}

// Snapshotter provides a consistent copy of catalog and ledger.
type Snapshotter interface {
	Snapshot() ([]models.StockItem, []models.Transaction, uint64)
}

// Result reports what an export wrote.
type Result struct {
	Items        int       `json:"items"`
	Transactions int       `json:"transactions"`
	ExportedAt   time.Time `json:"exported_at"`
}

// Service exports the inventory to Google Sheets.
type Service struct {
	sheets Spreadsheet
	source Snapshotter
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires the backup exporter. A nil sheets writer disables it.
func NewService(sheets Spreadsheet, source Snapshotter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sheets: sheets, source: source, logger: logger, now: time.Now}
}

// Export replaces the Catalog and Ledger tabs with the current state.
func (s *Service) Export(ctx context.Context) (Result, error) {
	if s.sheets == nil {
		return Result{}, ErrDisabled
	}

	items, ledger, _ := s.source.Snapshot()
	exportedAt := s.now().UTC()

	if err := s.replace(ctx, catalogRange, catalogRows(items)); err != nil {
		return Result{}, err
	}
	if err := s.replace(ctx, ledgerRange, ledgerRows(ledger)); err != nil {
		return Result{}, err
	}

	s.logger.Info("inventory exported",
		zap.Int("items", len(items)),
		zap.Int("transactions", len(ledger)))

	return Result{Items: len(items), Transactions: len(ledger), ExportedAt: exportedAt}, nil
}

// Stored counts the records currently held in the spreadsheet, header rows
// excluded.
func (s *Service) Stored(ctx context.Context) (Result, error) {
	if s.sheets == nil {
		return Result{}, ErrDisabled
	}

	catalog, err := s.sheets.ReadRange(ctx, catalogRange)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", catalogRange, err)
	}
	ledger, err := s.sheets.ReadRange(ctx, ledgerRange)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", ledgerRange, err)
	}

	return Result{Items: dataRows(catalog), Transactions: dataRows(ledger)}, nil
}

func dataRows(rows [][]interface{}) int {
	if len(rows) == 0 {
		return 0
	}
	return len(rows) - 1
}

func (s *Service) replace(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	if err := s.sheets.ClearRange(ctx, sheetRange); err != nil {
		return fmt.Errorf("export %s: %w", sheetRange, err)
	}
	if err := s.sheets.WriteRows(ctx, sheetRange, rows); err != nil {
		return fmt.Errorf("export %s: %w", sheetRange, err)
	}
	return nil
}

func catalogRows(items []models.StockItem) [][]interface{} {
	rows := make([][]interface{}, 0, len(items)+1)
	rows = append(rows, []interface{}{"id", "sku", "name", "category", "type", "color", "quantity", "unit", "min_stock"})
	for _, item := range items {
		rows = append(rows, []interface{}{
			item.ID, item.SKU, item.Name, item.Category, item.Type, item.ColorHex,
			item.Quantity.String(), string(item.Unit), item.MinStock.String(),
		})
	}
	return rows
}

func ledgerRows(ledger []models.Transaction) [][]interface{} {
	rows := make([][]interface{}, 0, len(ledger)+1)
	rows = append(rows, []interface{}{"id", "date", "time", "type", "item_id", "item_name", "quantity", "unit", "responsible", "doc_number", "color"})
	for _, tx := range ledger {
		rows = append(rows, []interface{}{
			tx.ID, tx.Date, tx.Time, string(tx.Kind), tx.ItemID, tx.ItemName,
			tx.Quantity.String(), string(tx.Unit), tx.Responsible, tx.DocNumber, tx.ColorHex,
		})
	}
	return rows
}
