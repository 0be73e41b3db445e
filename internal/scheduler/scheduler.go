package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReportMaterializer computes metrics for pending scheduled reports.
type ReportMaterializer interface {
	MaterializeScheduled(ctx context.Context) (int, error)
}

// Scheduler runs the report materialization job on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	reports ReportMaterializer
	logger  *zap.Logger
	timeout time.Duration
}

func New(reports ReportMaterializer, logger *zap.Logger) *Scheduler {
	if reports == nil {
		panic("reports must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &Scheduler{
		cron:    cron.New(),
		reports: reports,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
}

// Start registers the materialization job under the given cron spec and
// starts the scheduler in the background.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runMaterialize); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", spec))
	return nil
}

// Stop halts the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runMaterialize() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	count, err := s.reports.MaterializeScheduled(ctx)
	if err != nil {
		s.logger.Error("report materialization failed",
			zap.Int("completed", count),
			zap.Error(err))
		return
	}
	if count > 0 {
		s.logger.Info("scheduled reports materialized",
			zap.Int("count", count),
			zap.Duration("duration", time.Since(start)))
	}
}
