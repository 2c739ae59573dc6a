package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/config"
	"github.com/mamadbah2/paintstock/internal/inventory"
	"github.com/mamadbah2/paintstock/internal/repository/mongodb"
	"github.com/mamadbah2/paintstock/internal/repository/sheets"
	"github.com/mamadbah2/paintstock/internal/scheduler"
	"github.com/mamadbah2/paintstock/internal/server/handlers"
	"github.com/mamadbah2/paintstock/internal/server/router"
	backupsvc "github.com/mamadbah2/paintstock/internal/service/backup"
	insightsvc "github.com/mamadbah2/paintstock/internal/service/insights"
	reportingsvc "github.com/mamadbah2/paintstock/internal/service/reporting"
	stocksvc "github.com/mamadbah2/paintstock/internal/service/stock"
	whatsappsvc "github.com/mamadbah2/paintstock/internal/service/whatsapp"
	"github.com/mamadbah2/paintstock/pkg/clients/anthropic"
	whatsappclient "github.com/mamadbah2/paintstock/pkg/clients/whatsapp"
	"github.com/mamadbah2/paintstock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	location, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	seed, err := inventory.LoadSeed(cfg.Inventory.SeedFile)
	if err != nil {
		baseLogger.Fatal("failed to load seed inventory", zap.Error(err))
	}

	storeOpts := []inventory.Option{
		inventory.WithSeed(seed.Items, seed.Transactions),
		inventory.WithLogger(baseLogger.Named("inventory")),
	}
	if cfg.Inventory.StrictReferences {
		storeOpts = append(storeOpts, inventory.WithStrictReferences())
	}
	if cfg.Inventory.StockGuard {
		storeOpts = append(storeOpts, inventory.WithStockGuard())
	}
	store := inventory.NewStore(storeOpts...)
	baseLogger.Info("inventory loaded",
		zap.Int("items", len(seed.Items)),
		zap.Int("transactions", len(seed.Transactions)),
		zap.Bool("strict_references", cfg.Inventory.StrictReferences),
		zap.Bool("stock_guard", cfg.Inventory.StockGuard))

	stockSvc := stocksvc.NewService(store, location, baseLogger.Named("svc.stock"))

	// Initialize AI Client
	var advisor insightsvc.InventoryAdvisor
	if cfg.AI.AnthropicKey != "" {
		var opts []anthropic.Option
		if cfg.AI.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.AI.Model))
		}
		advisor = anthropic.NewClient(cfg.AI.AnthropicKey, opts...)
		baseLogger.Info("anthropic ai client enabled")
	} else {
		baseLogger.Warn("anthropic api key missing, inventory insights disabled")
	}
	insightSvc := insightsvc.NewService(advisor, store, baseLogger.Named("svc.insights"))

	var snapshots reportingsvc.SnapshotRepository
	var snapshotReader handlers.SnapshotReader
	if cfg.MongoDB.URI != "" {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		snapshots = mongoRepo
		snapshotReader = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, daily snapshots will not be stored")
	}
	reportingSvc := reportingsvc.NewService(store, snapshots, baseLogger.Named("svc.reporting"))

	var spreadsheet backupsvc.Spreadsheet
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		spreadsheet = sheetsRepo
	} else {
		baseLogger.Warn("google sheets not configured, backups disabled")
	}
	backupSvc := backupsvc.NewService(spreadsheet, store, baseLogger.Named("svc.backup"))

	var sender handlers.ReportSender
	jobs := scheduler.Jobs{Reports: reportingSvc}
	if spreadsheet != nil {
		jobs.Exporter = backupSvc
	}
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, baseLogger.Named("svc.whatsapp"))
		jobs.Sender = messagingSvc
		sender = messagingSvc
	} else {
		baseLogger.Warn("whatsapp not configured, daily reports will only be logged")
	}

	// Initialize Scheduler
	sched := scheduler.NewScheduler(jobs, location, baseLogger.Named("scheduler"))
	if err := sched.Start(cfg.Reporting.CronSchedule, cfg.Reporting.BackupCronSchedule); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	inventoryHandler := handlers.NewInventoryHandler(stockSvc, insightSvc, backupSvc, baseLogger.Named("handlers.inventory"))
	reportHandler := handlers.NewReportHandler(reportingSvc, sender, snapshotReader, location, baseLogger.Named("handlers.reports"))
	engine := router.New(inventoryHandler, reportHandler, baseLogger.Named("router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
