package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/domain/models"
)

var errSnapshotsDisabled = errors.New("snapshot storage not configured")

// ReportGenerator builds the daily stock report.
type ReportGenerator interface {
	GenerateDailyReport(ctx context.Context, day time.Time) (string, error)
}

// ReportSender delivers a report.
type ReportSender interface {
	SendReport(ctx context.Context, report string) error
}

// SnapshotReader reads stored daily snapshots.
type SnapshotReader interface {
	LatestStockSnapshot(ctx context.Context) (*models.StockSnapshot, error)
}

// ReportHandler exposes the daily report on demand.
type ReportHandler struct {
	reports   ReportGenerator
	sender    ReportSender
	snapshots SnapshotReader
	location  *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewReportHandler wires the report endpoints. sender and snapshots may be nil.
func NewReportHandler(reports ReportGenerator, sender ReportSender, snapshots SnapshotReader, location *time.Location, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &ReportHandler{
		reports:   reports,
		sender:    sender,
		snapshots: snapshots,
		location:  location,
		now:       time.Now,
		logger:    logger,
	}
}

// DailyReport builds today's report and delivers it when a sender is configured.
func (h *ReportHandler) DailyReport(c *gin.Context) {
	ctx := c.Request.Context()

	report, err := h.reports.GenerateDailyReport(ctx, h.now().In(h.location))
	if err != nil {
		h.logger.Error("daily report failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sent := false
	if h.sender != nil {
		if err := h.sender.SendReport(ctx, report); err != nil {
			h.logger.Error("daily report delivery failed", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "report": report})
			return
		}
		sent = true
	}

	c.JSON(http.StatusOK, gin.H{"report": report, "sent": sent})
}

// LatestSnapshot returns the most recent stored snapshot.
func (h *ReportHandler) LatestSnapshot(c *gin.Context) {
	if h.snapshots == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errSnapshotsDisabled.Error()})
		return
	}

	snapshot, err := h.snapshots.LatestStockSnapshot(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to read latest snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot stored yet"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
