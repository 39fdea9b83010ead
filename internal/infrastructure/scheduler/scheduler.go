package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is the body of a job, for example the daily sales report or the
// abandoned cart sweep
type Task func(ctx context.Context) error

// Job is one run of a Task, including its retries
type Job struct {
	ID          uuid.UUID
	Name        string
	Task        Task
	Status      JobStatus
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
	RetryCount  int
	MaxRetries  int
	NextRetryAt *time.Time
}

func NewJob(name string, task Task, maxRetries int) *Job {
	return &Job{
		ID:         uuid.New(),
		Name:       name,
		Task:       task,
		Status:     JobStatusPending,
		MaxRetries: maxRetries,
	}
}

func (j *Job) Start() {
	now := time.Now()
	j.Status, j.StartedAt, j.Error = JobStatusRunning, &now, ""
}

func (j *Job) Complete() {
	now := time.Now()
	j.Status, j.CompletedAt = JobStatusSuccess, &now
}

func (j *Job) Fail(reason string) {
	now := time.Now()
	j.Status, j.CompletedAt, j.Error = JobStatusFailed, &now, reason
}

// ShouldRetry reports whether a failed job has retries left
func (j *Job) ShouldRetry() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// ScheduleRetry consumes one retry and makes the job pending again after delay
func (j *Job) ScheduleRetry(delay time.Duration) {
	at := time.Now().Add(delay)
	j.RetryCount++
	j.Status, j.NextRetryAt, j.Error = JobStatusPending, &at, ""
}

// JobObserver receives a copy of the job after every finished attempt
type JobObserver func(job Job)

// Config sizes the worker pool that runs scheduled jobs
type Config struct {
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxConcurrentJobs: 2,
		JobTimeout:        10 * time.Minute,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

func (c Config) Validate() error {
	switch {
	case c.MaxConcurrentJobs < 1:
		return fmt.Errorf("%w: max concurrent jobs must be positive", ErrInvalidConfig)
	case c.JobTimeout <= 0:
		return fmt.Errorf("%w: job timeout must be positive", ErrInvalidConfig)
	case c.RetryAttempts < 0:
		return fmt.Errorf("%w: retry attempts cannot be negative", ErrInvalidConfig)
	}
	return nil
}

const queueSize = 100

// Scheduler runs jobs on MaxConcurrentJobs workers. A failed job is put back
// on the queue after RetryDelay without holding a worker while it waits.
type Scheduler struct {
	config   Config
	observer JobObserver
	logger   *zap.Logger

	queue   chan *Job
	cancel  context.CancelFunc
	workers sync.WaitGroup

	mu      sync.Mutex
	running bool
	timers  map[uuid.UUID]*time.Timer
}

// NewScheduler creates an idle scheduler; observer may be nil
func NewScheduler(config Config, observer JobObserver, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		config:   config,
		observer: observer,
		logger:   logger,
		queue:    make(chan *Job, queueSize),
		timers:   make(map[uuid.UUID]*time.Timer),
	}
}

// Start launches the workers. Starting a running scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	for id := range s.config.MaxConcurrentJobs {
		s.workers.Add(1)
		go s.work(ctx, id)
	}

	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.config.MaxConcurrentJobs),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop drops pending retries, cancels running jobs and waits for the workers
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Job scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// SubmitJob queues job without blocking
func (s *Scheduler) SubmitJob(job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSchedulerNotRunning
	}
	select {
	case s.queue <- job:
		s.logger.Debug("Job queued", zap.Stringer("job_id", job.ID), zap.String("job", job.Name))
		return nil
	default:
		return ErrJobQueueFull
	}
}

// Schedule wraps task in a job with the configured retry budget and queues it
func (s *Scheduler) Schedule(name string, task Task) (uuid.UUID, error) {
	job := NewJob(name, task, s.config.RetryAttempts)
	if err := s.SubmitJob(job); err != nil {
		return uuid.Nil, err
	}
	return job.ID, nil
}

func (s *Scheduler) work(ctx context.Context, id int) {
	defer s.workers.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.queue:
			s.execute(ctx, job, s.logger.With(
				zap.Int("worker_id", id),
				zap.Stringer("job_id", job.ID),
				zap.String("job", job.Name),
			))
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job *Job, log *zap.Logger) {
	job.Start()
	log.Info("Running job", zap.Int("attempt", job.RetryCount+1))

	jobCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	err := safeRun(jobCtx, job.Task)
	cancel()

	if err == nil {
		job.Complete()
		s.notify(job)
		log.Info("Job completed", zap.Duration("took", job.CompletedAt.Sub(*job.StartedAt)))
		return
	}

	job.Fail(err.Error())
	s.notify(job)
	log.Error("Job failed", zap.Error(err))

	if job.ShouldRetry() && ctx.Err() == nil {
		job.ScheduleRetry(s.config.RetryDelay)
		log.Info("Job retry scheduled",
			zap.Int("retry", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Timep("at", job.NextRetryAt),
		)
		s.retryLater(job, log)
	}
}

func (s *Scheduler) retryLater(job *Job, log *zap.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.timers[job.ID] = time.AfterFunc(s.config.RetryDelay, func() {
		s.mu.Lock()
		delete(s.timers, job.ID)
		s.mu.Unlock()
		if err := s.SubmitJob(job); err != nil {
			log.Warn("Job retry dropped", zap.Error(err))
		}
	})
}

// safeRun turns a panicking task into an error so one bad job cannot take
// down a worker
func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return task(ctx)
}

func (s *Scheduler) notify(job *Job) {
	if s.observer != nil {
		s.observer(*job)
	}
}
