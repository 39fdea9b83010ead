package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Recurrence tells a schedule how often it fires
type Recurrence string

const (
	Daily   Recurrence = "DAILY"
	Monthly Recurrence = "MONTHLY"
)

// Schedule describes when a named task runs. Day is only used by monthly
// schedules and is capped at 28 so every month has it.
type Schedule struct {
	Name       string
	Recurrence Recurrence
	Day        int
	Hour       int
	Minute     int
	Task       Task
}

// Validate checks the schedule fields
func (s Schedule) Validate() error {
	if s.Name == "" || s.Task == nil {
		return fmt.Errorf("%w: schedule needs a name and a task", ErrInvalidConfig)
	}
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("%w: hour must be 0-23, got %d", ErrInvalidConfig, s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("%w: minute must be 0-59, got %d", ErrInvalidConfig, s.Minute)
	}
	switch s.Recurrence {
	case Daily:
	case Monthly:
		if s.Day < 1 || s.Day > 28 {
			return fmt.Errorf("%w: day must be 1-28, got %d", ErrInvalidConfig, s.Day)
		}
	default:
		return fmt.Errorf("%w: unknown recurrence %q", ErrInvalidConfig, s.Recurrence)
	}
	return nil
}

// Due reports whether the schedule fires at the minute of now
func (s Schedule) Due(now time.Time) bool {
	if now.Hour() != s.Hour || now.Minute() != s.Minute {
		return false
	}
	return s.Recurrence != Monthly || now.Day() == s.Day
}

// NextRun returns the first firing time strictly after now
func (s Schedule) NextRun(now time.Time) time.Time {
	loc := now.Location()
	switch s.Recurrence {
	case Monthly:
		next := time.Date(now.Year(), now.Month(), s.Day, s.Hour, s.Minute, 0, 0, loc)
		if !next.After(now) {
			next = time.Date(now.Year(), now.Month()+1, s.Day, s.Hour, s.Minute, 0, 0, loc)
		}
		return next
	default:
		next := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, loc)
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return next
	}
}

// runKey identifies one firing so a schedule runs at most once per period
func (s Schedule) runKey(now time.Time) string {
	if s.Recurrence == Monthly {
		return now.Format("2006-01")
	}
	return now.Format("2006-01-02")
}

// CronTriggerConfig holds configuration for the cron trigger
type CronTriggerConfig struct {
	// CheckInterval is how often to check if a schedule is due
	CheckInterval time.Duration
	// Location is the time zone schedules are evaluated in
	Location *time.Location
}

// DefaultCronTriggerConfig returns default cron trigger configuration
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		CheckInterval: 30 * time.Second,
		Location:      time.UTC,
	}
}

// ScheduleStatus is a snapshot of one schedule
type ScheduleStatus struct {
	Name       string     `json:"name"`
	Recurrence Recurrence `json:"recurrence"`
	NextRunAt  time.Time  `json:"next_run_at"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
	LastStatus JobStatus  `json:"last_status,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// CronTrigger submits schedules to the worker pool when they come due
type CronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	schedules []Schedule
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastRuns  map[string]string
	results   map[string]Job
}

// NewCronTrigger creates a new cron trigger over its own worker pool
func NewCronTrigger(
	config CronTriggerConfig,
	poolConfig Config,
	schedules []Schedule,
	logger *zap.Logger,
) (*CronTrigger, error) {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = DefaultCronTriggerConfig().CheckInterval
	}
	for _, s := range schedules {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}

	c := &CronTrigger{
		config:    config,
		schedules: schedules,
		logger:    logger,
		now:       time.Now,
		lastRuns:  make(map[string]string),
		results:   make(map[string]Job),
	}
	c.scheduler = NewScheduler(poolConfig, c.record, logger)
	return c, nil
}

// Start starts the worker pool and the cron loop
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.scheduler.Start(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	for _, s := range c.schedules {
		c.logger.Info("Scheduled job registered",
			zap.String("job", s.Name),
			zap.String("recurrence", string(s.Recurrence)),
			zap.Time("next_run_at", s.NextRun(c.localNow())),
		)
	}
	return nil
}

// Stop stops the cron loop and then drains the worker pool
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := c.scheduler.Stop(ctx); err != nil {
		return err
	}
	c.logger.Info("Cron trigger stopped")
	return nil
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger()
		}
	}
}

// checkAndTrigger submits every schedule that is due and has not run this period
func (c *CronTrigger) checkAndTrigger() {
	now := c.localNow()
	for _, s := range c.schedules {
		if !s.Due(now) {
			continue
		}
		key := s.runKey(now)

		c.mu.Lock()
		if c.lastRuns[s.Name] == key {
			c.mu.Unlock()
			continue
		}
		c.lastRuns[s.Name] = key
		c.mu.Unlock()

		c.logger.Info("Triggering scheduled job", zap.String("job", s.Name))
		if _, err := c.scheduler.Schedule(s.Name, s.Task); err != nil {
			c.logger.Error("Failed to submit scheduled job",
				zap.String("job", s.Name),
				zap.Error(err),
			)
		}
	}
}

// TriggerNow runs a schedule's task immediately, outside its timetable
func (c *CronTrigger) TriggerNow(name string) error {
	c.mu.Lock()
	running := c.isRunning
	c.mu.Unlock()
	if !running {
		return ErrSchedulerNotRunning
	}

	for _, s := range c.schedules {
		if s.Name == name {
			_, err := c.scheduler.Schedule(s.Name, s.Task)
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownJob, name)
}

// Status returns a snapshot of every schedule
func (c *CronTrigger) Status() []ScheduleStatus {
	now := c.localNow()

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ScheduleStatus, 0, len(c.schedules))
	for _, s := range c.schedules {
		st := ScheduleStatus{
			Name:       s.Name,
			Recurrence: s.Recurrence,
			NextRunAt:  s.NextRun(now),
		}
		if job, ok := c.results[s.Name]; ok {
			st.LastRunAt = job.StartedAt
			st.LastStatus = job.Status
			st.LastError = job.Error
		}
		out = append(out, st)
	}
	return out
}

func (c *CronTrigger) record(job Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[job.Name] = job
}

func (c *CronTrigger) localNow() time.Time {
	return c.now().In(c.config.Location)
}
