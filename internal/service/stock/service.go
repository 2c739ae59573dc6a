package stock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/domain/models"
	"github.com/mamadbah2/paintstock/internal/inventory"
)

// ErrInvalidArguments indicates the form payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid movement arguments")

const (
	dateFormat        = "2006-01-02"
	timeFormat        = "15:04"
	dashboardMovement = 5
)

// Store is the part of the inventory state container the service drives.
type Store interface {
	Record(tx models.Transaction) (inventory.RecordResult, error)
	NextTransactionID() string
	CreateItem(draft models.ItemDraft) (models.StockItem, error)
	UpdateItem(item models.StockItem) (models.StockItem, error)
	DeleteItem(id string, confirm inventory.Confirmer) (models.StockItem, error)
	Item(id string) (models.StockItem, error)
	Items() []models.StockItem
	Transactions(filter models.LedgerFilter, limit int) []models.Transaction
	Summary() models.StockSummary
	Reset()
}

// Dashboard aggregates what the landing view shows.
type Dashboard struct {
	Summary models.StockSummary  `json:"summary"`
	Recent  []models.Transaction `json:"recent"`
}

// Service turns form input into catalog and ledger mutations.
type Service struct {
	store    Store
	logger   *zap.Logger
	now      func() time.Time
	location *time.Location
}

// NewService wires the stock service. A nil location means UTC.
func NewService(store Store, location *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &Service{
		store:    store,
		logger:   logger,
		now:      time.Now,
		location: location,
	}
}

// RegisterEntry records an inbound movement. The kind defaults to IN and may
// be RETURN.
func (s *Service) RegisterEntry(req models.MovementRequest) (models.Transaction, error) {
	kind := models.MovementIn
	if strings.TrimSpace(req.Kind) != "" {
		parsed, err := models.ParseMovementKind(req.Kind)
		if err != nil || !parsed.Inbound() {
			return models.Transaction{}, fmt.Errorf("entry kind %q: %w", req.Kind, ErrInvalidArguments)
		}
		kind = parsed
	}
	return s.register(req, kind)
}

// RegisterExit records an OUT movement.
func (s *Service) RegisterExit(req models.MovementRequest) (models.Transaction, error) {
	return s.register(req, models.MovementOut)
}

func (s *Service) register(req models.MovementRequest, kind models.MovementKind) (models.Transaction, error) {
	tx, err := s.buildTransaction(req, kind)
	if err != nil {
		return models.Transaction{}, err
	}

	result, err := s.store.Record(tx)
	if err != nil {
		return models.Transaction{}, err
	}

	fields := []zap.Field{
		zap.String("transaction_id", tx.ID),
		zap.String("item_id", tx.ItemID),
		zap.String("kind", string(kind)),
		zap.String("quantity", tx.Quantity.String()),
	}
	if result.Item != nil {
		fields = append(fields, zap.String("balance", result.Item.Quantity.String()))
		if result.Item.LowStock() {
			s.logger.Warn("item at or below minimum stock", append(fields, zap.String("min_stock", result.Item.MinStock.String()))...)
			return tx, nil
		}
	}
	s.logger.Info("stock movement registered", fields...)

	return tx, nil
}

func (s *Service) buildTransaction(req models.MovementRequest, kind models.MovementKind) (models.Transaction, error) {
	itemID := strings.TrimSpace(req.ItemID)
	if itemID == "" {
		return models.Transaction{}, fmt.Errorf("missing item: %w", ErrInvalidArguments)
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(req.Quantity))
	if err != nil || !quantity.IsPositive() {
		return models.Transaction{}, fmt.Errorf("quantity %q: %w", req.Quantity, ErrInvalidArguments)
	}

	now := s.now().In(s.location)
	date := now.Format(dateFormat)
	if req.Date != "" {
		parsed, err := time.ParseInLocation(dateFormat, req.Date, s.location)
		if err != nil {
			return models.Transaction{}, fmt.Errorf("date %q: %w", req.Date, ErrInvalidArguments)
		}
		date = parsed.Format(dateFormat)
	}

	tx := models.Transaction{
		ID:          s.store.NextTransactionID(),
		ItemID:      itemID,
		Kind:        kind,
		Quantity:    quantity,
		Responsible: strings.TrimSpace(req.Responsible),
		DocNumber:   strings.TrimSpace(req.DocNumber),
		Date:        date,
		Time:        now.Format(timeFormat),
	}

	// Snapshot the display fields; a missing item is left to the store's policy.
	if item, err := s.store.Item(itemID); err == nil {
		tx.ItemName = item.Name
		tx.Unit = item.Unit
		tx.ColorHex = item.ColorHex
	}

	return tx, nil
}

// AddItem validates a draft and adds it to the catalog.
func (s *Service) AddItem(draft models.ItemDraft) (models.StockItem, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		return models.StockItem{}, fmt.Errorf("missing name: %w", ErrInvalidArguments)
	}
	if draft.Unit != "" {
		unit, err := models.ParseUnit(string(draft.Unit))
		if err != nil {
			return models.StockItem{}, fmt.Errorf("%v: %w", err, ErrInvalidArguments)
		}
		draft.Unit = unit
	}
	if draft.MinStock != nil && draft.MinStock.IsNegative() {
		return models.StockItem{}, fmt.Errorf("negative minimum stock: %w", ErrInvalidArguments)
	}
	return s.store.CreateItem(draft)
}

// EditItem replaces the record under id. The identifier in the payload is ignored.
func (s *Service) EditItem(id string, item models.StockItem) (models.StockItem, error) {
	if strings.TrimSpace(item.Name) == "" {
		return models.StockItem{}, fmt.Errorf("missing name: %w", ErrInvalidArguments)
	}
	unit, err := models.ParseUnit(string(item.Unit))
	if err != nil {
		return models.StockItem{}, fmt.Errorf("%v: %w", err, ErrInvalidArguments)
	}
	item.Unit = unit
	item.ID = id
	return s.store.UpdateItem(item)
}

// DeleteItem removes an item once the caller has confirmed it.
func (s *Service) DeleteItem(id string, confirmed bool) (models.StockItem, error) {
	return s.store.DeleteItem(id, func(item models.StockItem) bool {
		if !confirmed {
			s.logger.Info("catalog delete awaiting confirmation", zap.String("item_id", item.ID), zap.String("name", item.Name))
		}
		return confirmed
	})
}

// Item returns one catalog record.
func (s *Service) Item(id string) (models.StockItem, error) {
	return s.store.Item(id)
}

// Items returns the catalog.
func (s *Service) Items() []models.StockItem {
	return s.store.Items()
}

// Movements returns the filtered ledger.
func (s *Service) Movements(filter models.LedgerFilter, limit int) []models.Transaction {
	return s.store.Transactions(filter, limit)
}

// Dashboard returns the summary and the latest movements.
func (s *Service) Dashboard() Dashboard {
	return Dashboard{
		Summary: s.store.Summary(),
		Recent:  s.store.Transactions(models.FilterAll, dashboardMovement),
	}
}

// ReorderSuggestions lists the items that need purchasing.
func (s *Service) ReorderSuggestions() []models.ReorderSuggestion {
	return models.SuggestReorders(s.store.Items())
}

// Reset clears catalog and ledger back to the seed state.
func (s *Service) Reset() {
	s.logger.Warn("inventory reset requested")
	s.store.Reset()
}
