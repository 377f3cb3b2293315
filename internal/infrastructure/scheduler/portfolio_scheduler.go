package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	appinstallment "github.com/zarnegar/backend/internal/application/installment"
	"go.uber.org/zap"
)

// PortfolioSchedulerConfig holds configuration for the portfolio job scheduler
type PortfolioSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// PriceRefreshSpec is the cron spec for the gold price refresh job
	PriceRefreshSpec string
	// ReminderSpec is the cron spec for the overdue reminder sweep
	ReminderSpec string
	// MetricsSpec is the cron spec for the daily portfolio metrics rollup
	MetricsSpec string
	// JobTimeout is the maximum time a single job run may take
	JobTimeout time.Duration
}

// DefaultPortfolioSchedulerConfig returns default scheduler configuration:
// prices every five minutes, reminders at 09:00, metrics at 00:30.
func DefaultPortfolioSchedulerConfig() PortfolioSchedulerConfig {
	return PortfolioSchedulerConfig{
		Enabled:          true,
		PriceRefreshSpec: "@every 5m",
		ReminderSpec:     "0 9 * * *",
		MetricsSpec:      "30 0 * * *",
		JobTimeout:       10 * time.Minute,
	}
}

// PortfolioScheduler runs the recurring portfolio jobs (price refresh,
// overdue reminder sweep, daily metrics) on cron schedules. Job logic lives
// in the portfolio service; this component only sequences and bounds it.
type PortfolioScheduler struct {
	portfolio *appinstallment.PortfolioService
	config    PortfolioSchedulerConfig
	cron      *cron.Cron
	logger    *zap.Logger

	mu        sync.Mutex
	isRunning bool
}

// NewPortfolioScheduler creates a new portfolio job scheduler
func NewPortfolioScheduler(
	portfolio *appinstallment.PortfolioService,
	config PortfolioSchedulerConfig,
	logger *zap.Logger,
) *PortfolioScheduler {
	return &PortfolioScheduler{
		portfolio: portfolio,
		config:    config,
		cron:      cron.New(),
		logger:    logger,
	}
}

// Start registers the jobs and starts the cron runner
func (s *PortfolioScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if !s.config.Enabled {
		s.logger.Info("portfolio scheduler is disabled")
		return nil
	}

	jobs := []struct {
		name string
		spec string
		run  func(context.Context) error
	}{
		{"gold_price_refresh", s.config.PriceRefreshSpec, s.runPriceRefresh},
		{"overdue_reminders", s.config.ReminderSpec, s.runReminderSweep},
		{"daily_metrics", s.config.MetricsSpec, s.runDailyMetrics},
	}

	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.spec, func() {
			s.execute(job.name, job.run)
		}); err != nil {
			return err
		}
		s.logger.Info("portfolio job registered",
			zap.String("job", job.name),
			zap.String("spec", job.spec))
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Info("portfolio scheduler started")

	return nil
}

// Stop stops the cron runner and waits for in-flight jobs to finish
func (s *PortfolioScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.isRunning = false

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("portfolio scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("portfolio scheduler stop timed out")
		return ctx.Err()
	}
}

// execute runs one job with a bounded context and logs the outcome
func (s *PortfolioScheduler) execute(name string, run func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.JobTimeout)
	defer cancel()

	started := time.Now()
	s.logger.Debug("portfolio job starting", zap.String("job", name))

	if err := run(ctx); err != nil {
		s.logger.Error("portfolio job failed",
			zap.String("job", name),
			zap.Duration("duration", time.Since(started)),
			zap.Error(err))
		return
	}

	s.logger.Info("portfolio job completed",
		zap.String("job", name),
		zap.Duration("duration", time.Since(started)))
}

func (s *PortfolioScheduler) runPriceRefresh(ctx context.Context) error {
	result := s.portfolio.RunPriceRefresh(ctx)
	if result.FallbackCount > 0 {
		s.logger.Warn("price refresh resolved fallback prices",
			zap.Int("fallbacks", result.FallbackCount))
	}
	return nil
}

func (s *PortfolioScheduler) runReminderSweep(ctx context.Context) error {
	_, err := s.portfolio.SendOverdueReminders(ctx)
	return err
}

func (s *PortfolioScheduler) runDailyMetrics(ctx context.Context) error {
	_, err := s.portfolio.ComputeDailyMetrics(ctx)
	return err
}
