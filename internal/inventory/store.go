package inventory

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/domain/models"
)

var (
	// ErrItemNotFound indicates no catalog record carries the requested identifier.
	ErrItemNotFound = errors.New("item not found")
	// ErrInsufficientStock is returned by the stock guard when an OUT movement exceeds the available quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrDeleteNotConfirmed indicates the acting user declined a catalog delete.
	ErrDeleteNotConfirmed = errors.New("delete not confirmed")
	// ErrDuplicateItem indicates an identifier collision in the catalog.
	ErrDuplicateItem = errors.New("duplicate item id")
)

const (
	defaultColorHex = "#137fec"
	defaultUnit     = models.UnitGallons
)

var defaultMinStock = decimal.NewFromInt(10)

// Confirmer is asked before a catalog record is removed.
type Confirmer func(item models.StockItem) bool

// RecordResult describes the effect of a recorded movement.
type RecordResult struct {
	Transaction models.Transaction
	// Item is the catalog record after the movement; nil when the reference missed.
	Item    *models.StockItem
	Matched bool
}

// Store owns the catalog and the ledger. Both are ordered newest first and are
// only mutated under the same lock, so readers never observe a movement in the
// ledger without its effect on the catalog.
type Store struct {
	mu      sync.RWMutex
	items   []models.StockItem
	ledger  []models.Transaction
	version uint64
	lastTx  int64

	seedItems  []models.StockItem
	seedLedger []models.Transaction

	strictRefs bool
	stockGuard bool
	newID      func() string
	newSKU     func() string
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStrictReferences makes Record reject movements whose item is not in the
// catalog instead of appending them to the ledger.
func WithStrictReferences() Option {
	return func(s *Store) { s.strictRefs = true }
}

// WithStockGuard makes Record reject OUT movements larger than the available quantity.
func WithStockGuard() Option {
	return func(s *Store) { s.stockGuard = true }
}

// WithSeed sets the initial catalog and ledger. Reset returns to this state.
func WithSeed(items []models.StockItem, ledger []models.Transaction) Option {
	return func(s *Store) {
		s.seedItems = cloneItems(items)
		s.seedLedger = cloneLedger(ledger)
	}
}

// WithClock overrides the clock used for transaction identifiers.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides item identifier generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithSKUGenerator overrides stock-keeping code generation.
func WithSKUGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newSKU = fn
		}
	}
}

// NewStore builds a store, optionally seeded.
func NewStore(opts ...Option) *Store {
	s := &Store{
		newID:  uuid.NewString,
		newSKU: randomSKU,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.items = cloneItems(s.seedItems)
	s.ledger = cloneLedger(s.seedLedger)
	s.lastTx = highestNumericID(s.ledger)
	return s
}

// Record prepends the transaction to the ledger and applies its signed
// quantity to the referenced item. Quantities are not bounded below unless
// the stock guard is enabled. A reference to an unknown item leaves the
// catalog untouched.
func (s *Store) Record(tx models.Transaction) (RecordResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(tx.ItemID)
	if idx < 0 && s.strictRefs {
		return RecordResult{}, fmt.Errorf("record transaction %s: %w", tx.ID, ErrItemNotFound)
	}

	if idx >= 0 && s.stockGuard && tx.Kind == models.MovementOut && s.items[idx].Quantity.LessThan(tx.Quantity) {
		return RecordResult{}, fmt.Errorf("record transaction %s: %s available, %s requested: %w",
			tx.ID, s.items[idx].Quantity, tx.Quantity, ErrInsufficientStock)
	}

	s.ledger = append([]models.Transaction{tx}, s.ledger...)
	s.version++

	result := RecordResult{Transaction: tx}
	if idx < 0 {
		s.logger.Warn("transaction references unknown item; catalog unchanged",
			zap.String("transaction_id", tx.ID),
			zap.String("item_id", tx.ItemID))
		return result, nil
	}

	s.items[idx].Quantity = s.items[idx].Quantity.Add(tx.Delta())
	item := s.items[idx]
	result.Item = &item
	result.Matched = true

	s.logger.Debug("stock movement applied",
		zap.String("transaction_id", tx.ID),
		zap.String("item_id", tx.ItemID),
		zap.String("kind", string(tx.Kind)),
		zap.String("quantity", tx.Quantity.String()),
		zap.String("balance", item.Quantity.String()))

	return result, nil
}

// NextTransactionID hands out a strictly increasing identifier derived from the
// clock in milliseconds.
func (s *Store) NextTransactionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.now().UnixMilli()
	if next <= s.lastTx {
		next = s.lastTx + 1
	}
	s.lastTx = next
	return strconv.FormatInt(next, 10)
}

// CreateItem adds a new record at the head of the catalog with a fresh
// identifier and stock-keeping code.
func (s *Store) CreateItem(draft models.ItemDraft) (models.StockItem, error) {
	item := models.StockItem{
		Name:     draft.Name,
		Category: draft.Category,
		Type:     draft.Type,
		ColorHex: draft.ColorHex,
		Quantity: decimal.Zero,
		Unit:     draft.Unit,
		MinStock: defaultMinStock,
	}
	if draft.Quantity != nil {
		item.Quantity = *draft.Quantity
	}
	if draft.MinStock != nil {
		item.MinStock = *draft.MinStock
	}
	if item.ColorHex == "" {
		item.ColorHex = defaultColorHex
	}
	if item.Unit == "" {
		item.Unit = defaultUnit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.newID()
	if s.indexOf(item.ID) >= 0 {
		return models.StockItem{}, fmt.Errorf("create item %s: %w", item.ID, ErrDuplicateItem)
	}
	item.SKU = s.newSKU()

	s.items = append([]models.StockItem{item}, s.items...)
	s.version++

	s.logger.Info("catalog item created", zap.String("item_id", item.ID), zap.String("sku", item.SKU))
	return item, nil
}

// UpdateItem replaces the record carrying item.ID.
func (s *Store) UpdateItem(item models.StockItem) (models.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(item.ID)
	if idx < 0 {
		return models.StockItem{}, fmt.Errorf("update item %s: %w", item.ID, ErrItemNotFound)
	}

	s.items[idx] = item
	s.version++

	s.logger.Info("catalog item updated", zap.String("item_id", item.ID))
	return item, nil
}

// DeleteItem removes the record after confirm approves it. The ledger keeps
// every transaction that referenced the item.
func (s *Store) DeleteItem(id string, confirm Confirmer) (models.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.StockItem{}, fmt.Errorf("delete item %s: %w", id, ErrItemNotFound)
	}

	item := s.items[idx]
	if confirm == nil || !confirm(item) {
		return models.StockItem{}, fmt.Errorf("delete item %s: %w", id, ErrDeleteNotConfirmed)
	}

	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	s.version++

	s.logger.Info("catalog item deleted", zap.String("item_id", id))
	return item, nil
}

// Item returns the record carrying id.
func (s *Store) Item(id string) (models.StockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.StockItem{}, fmt.Errorf("item %s: %w", id, ErrItemNotFound)
	}
	return s.items[idx], nil
}

// Items returns a copy of the catalog.
func (s *Store) Items() []models.StockItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

// Transactions returns ledger entries passing filter, newest first.
func (s *Store) Transactions(filter models.LedgerFilter, limit int) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.FilterTransactions(s.ledger, filter, limit)
}

// Summary derives the stock summary from the current catalog.
func (s *Store) Summary() models.StockSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Summarize(s.items)
}

// Snapshot returns a consistent copy of catalog and ledger along with the
// state version it was taken at.
func (s *Store) Snapshot() ([]models.StockItem, []models.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items), cloneLedger(s.ledger), s.version
}

// Version increases on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Reset restores the seed catalog and ledger.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = cloneItems(s.seedItems)
	s.ledger = cloneLedger(s.seedLedger)
	s.version++

	s.logger.Info("inventory reset", zap.Int("items", len(s.items)), zap.Int("transactions", len(s.ledger)))
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func randomSKU() string {
	return fmt.Sprintf("SKU-%d", 1000+rand.Intn(9000))
}

func highestNumericID(ledger []models.Transaction) int64 {
	var highest int64
	for _, tx := range ledger {
		if id, err := strconv.ParseInt(tx.ID, 10, 64); err == nil && id > highest {
			highest = id
		}
	}
	return highest
}

func cloneItems(items []models.StockItem) []models.StockItem {
	out := make([]models.StockItem, len(items))
	copy(out, items)
	return out
}

func cloneLedger(ledger []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(ledger))
	copy(out, ledger)
	return out
}
