package insights

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/domain/models"
)

const defaultTimeout = 30 * time.Second

// InventoryAdvisor is the external analysis capability.
type InventoryAdvisor interface {
	Analyze(ctx context.Context, items []models.StockItem, txs []models.Transaction) (models.Insight, error)
}

// SnapshotSource provides a consistent view of catalog and ledger.
type SnapshotSource interface {
	Snapshot() ([]models.StockItem, []models.Transaction, uint64)
	Version() uint64
}

type cachedInsight struct {
	insight models.Insight
	version uint64
}

// Service asks the advisor for insights without ever letting it affect stock
// operations. Failures degrade to "no insight".
type Service struct {
	advisor InventoryAdvisor
	source  SnapshotSource
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	generation uint64
	cached     *cachedInsight
}

// NewService wires the insight service. A nil advisor disables insights.
func NewService(advisor InventoryAdvisor, source SnapshotSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		advisor: advisor,
		source:  source,
		timeout: defaultTimeout,
		logger:  logger,
	}
}

// Enabled reports whether an advisor is configured.
func (s *Service) Enabled() bool {
	return s.advisor != nil
}

// Refresh runs a new analysis. It returns nil when the advisor is disabled,
// fails, or when a newer refresh or an invalidation superseded this one
// before the answer arrived.
func (s *Service) Refresh(ctx context.Context) *models.Insight {
	if s.advisor == nil {
		return nil
	}

	s.mu.Lock()
	s.generation++
	ticket := s.generation
	s.mu.Unlock()

	items, txs, version := s.source.Snapshot()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	insight, err := s.advisor.Analyze(ctx, items, txs)
	if err != nil {
		s.logger.Warn("inventory insight unavailable", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket != s.generation {
		s.logger.Debug("discarding stale inventory insight", zap.Uint64("ticket", ticket), zap.Uint64("generation", s.generation))
		return nil
	}
	s.cached = &cachedInsight{insight: insight, version: version}

	return &insight
}

// Latest returns the last insight if the inventory has not changed since it
// was computed.
func (s *Service) Latest() *models.Insight {
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()

	if cached == nil || cached.version != s.source.Version() {
		return nil
	}
	insight := cached.insight
	return &insight
}

// Invalidate drops the cached insight and any analysis still in flight.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.cached = nil
}
