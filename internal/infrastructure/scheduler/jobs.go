package scheduler

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Job names
const (
	JobMonthlyReport = "monthly_report"
	JobCartCleanup   = "cart_cleanup"
)

// MonthlyReporter mails the report for the month that just ended
type MonthlyReporter interface {
	SendPreviousMonth(ctx context.Context) error
}

// CartCleaner removes carts untouched for longer than the retention period
type CartCleaner interface {
	CleanupAbandoned(ctx context.Context, now time.Time) (int64, error)
}

// NewStorefrontTrigger builds the cron trigger running the monthly report
// and the daily abandoned cart cleanup
func NewStorefrontTrigger(
	cfg config.SchedulerConfig,
	reports MonthlyReporter,
	carts CartCleaner,
	logger *zap.Logger,
) (*CronTrigger, error) {
	loc := time.UTC
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, err
		}
		loc = l
	}

	pool := DefaultConfig()
	if cfg.MaxConcurrentJobs > 0 {
		pool.MaxConcurrentJobs = cfg.MaxConcurrentJobs
	}
	if cfg.JobTimeout > 0 {
		pool.JobTimeout = cfg.JobTimeout
	}
	if cfg.RetryDelay > 0 {
		pool.RetryDelay = cfg.RetryDelay
	}
	pool.RetryAttempts = cfg.RetryAttempts

	schedules := []Schedule{
		{
			Name:       JobMonthlyReport,
			Recurrence: Monthly,
			Day:        cfg.MonthlyReportDay,
			Hour:       cfg.MonthlyReportHour,
			Minute:     cfg.MonthlyReportMin,
			Task:       reports.SendPreviousMonth,
		},
		{
			Name:       JobCartCleanup,
			Recurrence: Daily,
			Hour:       cfg.CartCleanupHour,
			Task:       cartCleanupTask(carts, logger),
		},
	}

	return NewCronTrigger(
		CronTriggerConfig{CheckInterval: DefaultCronTriggerConfig().CheckInterval, Location: loc},
		pool,
		schedules,
		logger,
	)
}

func cartCleanupTask(carts CartCleaner, logger *zap.Logger) Task {
	return func(ctx context.Context) error {
		removed, err := carts.CleanupAbandoned(ctx, time.Now())
		if err != nil {
			return err
		}
		logger.Info("abandoned carts removed", zap.Int64("count", removed))
		return nil
	}
}
