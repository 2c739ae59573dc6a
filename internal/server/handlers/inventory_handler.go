package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/domain/models"
	"github.com/mamadbah2/paintstock/internal/inventory"
	"github.com/mamadbah2/paintstock/internal/service/backup"
	"github.com/mamadbah2/paintstock/internal/service/stock"
)

// InsightProvider exposes the advisor output to the dashboard.
type InsightProvider interface {
	Enabled() bool
	Refresh(ctx context.Context) *models.Insight
	Latest() *models.Insight
	Invalidate()
}

// BackupExporter writes a backup on demand and reports what the last one holds.
type BackupExporter interface {
	Export(ctx context.Context) (backup.Result, error)
	Stored(ctx context.Context) (backup.Result, error)
}

// InventoryHandler serves the inventory views over HTTP.
type InventoryHandler struct {
	stock    *stock.Service
	insights InsightProvider
	backup   BackupExporter
	logger   *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(stockSvc *stock.Service, insights InsightProvider, backupSvc BackupExporter, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{stock: stockSvc, insights: insights, backup: backupSvc, logger: logger}
}

// Dashboard returns the summary and the latest movements.
func (h *InventoryHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.stock.Dashboard())
}

// ListItems returns the catalog.
func (h *InventoryHandler) ListItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.stock.Items()})
}

// GetItem returns one catalog record.
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.stock.Item(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// CreateItem adds a catalog record.
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var draft models.ItemDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		h.logger.Warn("invalid item payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item payload"})
		return
	}

	item, err := h.stock.AddItem(draft)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.stockChanged()
	c.JSON(http.StatusCreated, item)
}

// UpdateItem replaces a catalog record.
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var item models.StockItem
	if err := c.ShouldBindJSON(&item); err != nil {
		h.logger.Warn("invalid item payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item payload"})
		return
	}

	updated, err := h.stock.EditItem(c.Param("id"), item)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.stockChanged()
	c.JSON(http.StatusOK, updated)
}

// DeleteItem removes a catalog record. The caller confirms with ?confirm=true.
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))

	item, err := h.stock.DeleteItem(c.Param("id"), confirmed)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.stockChanged()
	c.JSON(http.StatusOK, gin.H{"deleted": item})
}

// RegisterEntry records an IN or RETURN movement.
func (h *InventoryHandler) RegisterEntry(c *gin.Context) {
	h.registerMovement(c, h.stock.RegisterEntry)
}

// RegisterExit records an OUT movement.
func (h *InventoryHandler) RegisterExit(c *gin.Context) {
	h.registerMovement(c, h.stock.RegisterExit)
}

func (h *InventoryHandler) registerMovement(c *gin.Context, register func(models.MovementRequest) (models.Transaction, error)) {
	var req models.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid movement payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movement payload"})
		return
	}

	tx, err := register(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.stockChanged()
	c.JSON(http.StatusCreated, tx)
}

// ListMovements returns the ledger filtered by ?filter=ALL|IN|OUT and ?limit=N.
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	filter, err := models.ParseLedgerFilter(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"filter": filter, "transactions": h.stock.Movements(filter, limit)})
}

// OrderSuggestions lists items that need purchasing.
func (h *InventoryHandler) OrderSuggestions(c *gin.Context) {
	suggestions := h.stock.ReorderSuggestions()
	c.JSON(http.StatusOK, gin.H{"critical": len(suggestions), "suggestions": suggestions})
}

// Insights asks the advisor for a fresh analysis unless ?cached=true. Advisor
// failures yield a null insight, never an error status.
func (h *InventoryHandler) Insights(c *gin.Context) {
	if h.insights == nil || !h.insights.Enabled() {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "insight": nil})
		return
	}

	var insight *models.Insight
	if cached, _ := strconv.ParseBool(c.Query("cached")); cached {
		insight = h.insights.Latest()
	} else {
		insight = h.insights.Refresh(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "insight": insight})
}

// Reset restores the seed inventory.
func (h *InventoryHandler) Reset(c *gin.Context) {
	h.stock.Reset()
	h.stockChanged()
	c.JSON(http.StatusOK, h.stock.Dashboard())
}

// Backup exports catalog and ledger.
func (h *InventoryHandler) Backup(c *gin.Context) {
	if h.backup == nil {
		h.fail(c, backup.ErrDisabled)
		return
	}

	result, err := h.backup.Export(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BackupStatus counts the records held by the last backup.
func (h *InventoryHandler) BackupStatus(c *gin.Context) {
	if h.backup == nil {
		h.fail(c, backup.ErrDisabled)
		return
	}

	result, err := h.backup.Stored(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *InventoryHandler) stockChanged() {
	if h.insights != nil {
		h.insights.Invalidate()
	}
}

func (h *InventoryHandler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, stock.ErrInvalidArguments):
		status = http.StatusBadRequest
	case errors.Is(err, inventory.ErrItemNotFound):
		status = http.StatusNotFound
	case errors.Is(err, inventory.ErrDeleteNotConfirmed):
		status = http.StatusConflict
	case errors.Is(err, inventory.ErrInsufficientStock):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, inventory.ErrDuplicateItem):
		status = http.StatusConflict
	case errors.Is(err, backup.ErrDisabled):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		h.logger.Error("request failed", zap.Error(err))
	} else {
		h.logger.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
