package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/paintstock/internal/service/backup"
)

const jobTimeout = 2 * time.Minute

// ReportGenerator builds the daily stock report.
type ReportGenerator interface {
	GenerateDailyReport(ctx context.Context, day time.Time) (string, error)
}

// ReportSender delivers a report.
type ReportSender interface {
	SendReport(ctx context.Context, report string) error
}

// Exporter writes a backup of the inventory.
type Exporter interface {
	Export(ctx context.Context) (backup.Result, error)
}

// Jobs holds the optional collaborators of the scheduled tasks. A nil
// collaborator skips the matching step.
type Jobs struct {
	Reports  ReportGenerator
	Sender   ReportSender
	Exporter Exporter
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	jobs     Jobs
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in location.
func NewScheduler(jobs Jobs, location *time.Location, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}

	// Standard five-field cron expressions, evaluated in the shop's timezone.
	c := cron.New(cron.WithLocation(location))

	return &Scheduler{
		cron:     c,
		jobs:     jobs,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *Scheduler) Start(reportSpec, backupSpec string) error {
	s.logger.Info("starting scheduler", zap.String("report", reportSpec), zap.String("backup", backupSpec))

	if s.jobs.Reports != nil {
		if _, err := s.cron.AddFunc(reportSpec, s.runDailyReport); err != nil {
			return fmt.Errorf("schedule daily report: %w", err)
		}
	}

	if s.jobs.Exporter != nil {
		if _, err := s.cron.AddFunc(backupSpec, s.runBackup); err != nil {
			return fmt.Errorf("schedule backup export: %w", err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReport() {
	s.logger.Info("generating daily stock report")
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.jobs.Reports.GenerateDailyReport(ctx, s.now().In(s.location))
	if err != nil {
		s.logger.Error("failed to generate daily report", zap.Error(err))
		return
	}

	if s.jobs.Sender == nil {
		s.logger.Debug("report delivery disabled")
		return
	}

	if err := s.jobs.Sender.SendReport(ctx, report); err != nil {
		s.logger.Error("failed to send daily report", zap.Error(err))
	} else {
		s.logger.Info("daily report sent successfully")
	}
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	result, err := s.jobs.Exporter.Export(ctx)
	if err != nil {
		s.logger.Error("scheduled backup failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled backup finished", zap.Int("items", result.Items), zap.Int("transactions", result.Transactions))
}
