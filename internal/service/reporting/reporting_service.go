package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/domain/models"
)

const dateLayout = "2006-01-02"

// StockReader is the read side of the inventory the reports are built from.
type StockReader interface {
	Items() []models.StockItem
	Transactions(filter models.LedgerFilter, limit int) []models.Transaction
}

// SnapshotRepository persists daily snapshots.
type SnapshotRepository interface {
	SaveStockSnapshot(ctx context.Context, snapshot models.StockSnapshot) error
}

// Service produces the daily stock report.
type Service struct {
	stock  StockReader
	repo   SnapshotRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new reporting service instance. repo may be nil when
// snapshot persistence is not configured.
func NewService(stock StockReader, repo SnapshotRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{stock: stock, repo: repo, logger: logger, now: time.Now}
}

// BuildSnapshot aggregates the catalog and the movements dated on day.
func (s *Service) BuildSnapshot(day time.Time) models.StockSnapshot {
	items := s.stock.Items()
	summary := models.Summarize(items)
	dayKey := day.Format(dateLayout)

	inbound, outbound := decimal.Zero, decimal.Zero
	movements := 0
	for _, tx := range s.stock.Transactions(models.FilterAll, 0) {
		if tx.Date != dayKey {
			continue
		}
		movements++
		if tx.Kind.Inbound() {
			inbound = inbound.Add(tx.Quantity)
		} else {
			outbound = outbound.Add(tx.Quantity)
		}
	}

	low := make([]models.LowStockSnapshot, 0, summary.LowStockCount)
	for _, item := range items {
		if !item.LowStock() {
			continue
		}
		low = append(low, models.LowStockSnapshot{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: item.Quantity.String(),
			MinStock: item.MinStock.String(),
		})
	}

	return models.StockSnapshot{
		Date:          time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
		TotalQuantity: summary.TotalQuantity.String(),
		ItemCount:     summary.ItemCount,
		LowStockCount: summary.LowStockCount,
		Inbound:       inbound.String(),
		Outbound:      outbound.String(),
		Movements:     movements,
		LowStock:      low,
		CreatedAt:     s.now().UTC(),
	}
}

// GenerateDailyReport builds the snapshot of day, stores it when a repository
// is configured and returns the message sent to the shop manager.
func (s *Service) GenerateDailyReport(ctx context.Context, day time.Time) (string, error) {
	snapshot := s.BuildSnapshot(day)

	if s.repo != nil {
		if err := s.repo.SaveStockSnapshot(ctx, snapshot); err != nil {
			return "", fmt.Errorf("save stock snapshot: %w", err)
		}
		s.logger.Info("stock snapshot saved", zap.String("date", day.Format(dateLayout)))
	}

	return FormatDailyReport(snapshot, models.SuggestReorders(s.stock.Items())), nil
}

// FormatDailyReport renders the WhatsApp text of a snapshot.
func FormatDailyReport(snapshot models.StockSnapshot, reorders []models.ReorderSuggestion) string {
	var b strings.Builder

	fmt.Fprintf(&b, "*Relatório de estoque %s*\n", snapshot.Date.Format(dateLayout))
	fmt.Fprintf(&b, "Itens no catálogo: %d\n", snapshot.ItemCount)
	fmt.Fprintf(&b, "Quantidade total: %s\n", snapshot.TotalQuantity)
	fmt.Fprintf(&b, "Movimentações do dia: %d (entradas %s, saídas %s)\n", snapshot.Movements, snapshot.Inbound, snapshot.Outbound)

	if len(reorders) == 0 {
		b.WriteString("Nenhum item em estoque crítico.")
		return b.String()
	}

	fmt.Fprintf(&b, "\n*Reposição sugerida (%d itens críticos)*\n", len(reorders))
	for _, r := range reorders {
		fmt.Fprintf(&b, "- %s: %s em estoque, mínimo %s, comprar %s %s\n",
			r.Item.Name, r.Item.Quantity, r.Item.MinStock, r.SuggestedAmount, r.Item.Unit.Label())
	}
	return strings.TrimRight(b.String(), "\n")
}
