package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testPoolConfig() Config {
	return Config{
		MaxConcurrentJobs: 2,
		JobTimeout:        time.Second,
		RetryAttempts:     2,
		RetryDelay:        time.Millisecond,
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MaxConcurrentJobs = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.JobTimeout = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestJob_Lifecycle(t *testing.T) {
	job := NewJob("x", func(context.Context) error { return nil }, 1)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	job.Fail("boom")
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, 1, job.RetryCount)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.NotNil(t, job.NextRetryAt)

	job.Start()
	job.Fail("boom")
	assert.False(t, job.ShouldRetry())
}

func TestScheduler_SubmitJob_NotRunning(t *testing.T) {
	s := NewScheduler(testPoolConfig(), nil, zap.NewNop())

	_, err := s.Schedule("x", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestScheduler_RetriesUntilSuccess(t *testing.T) {
	var (
		mu       sync.Mutex
		finished []Job
		calls    atomic.Int32
	)
	done := make(chan struct{})
	observer := func(job Job) {
		mu.Lock()
		defer mu.Unlock()
		finished = append(finished, job)
		if job.Status == JobStatusSuccess {
			close(done)
		}
	}

	s := NewScheduler(testPoolConfig(), observer, zap.NewNop())
	require.NoError(t, s.Start(t.Context()))
	defer func() { _ = s.Stop(context.Background()) }()

	_, err := s.Schedule("flaky", func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not complete")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, finished, 3)
	assert.Equal(t, JobStatusFailed, finished[0].Status)
	assert.Equal(t, "transient", finished[0].Error)
	assert.Equal(t, JobStatusSuccess, finished[2].Status)
	assert.Equal(t, 2, finished[2].RetryCount)
}

func TestScheduler_PanicFailsJob(t *testing.T) {
	results := make(chan Job, 4)
	cfg := testPoolConfig()
	cfg.RetryAttempts = 0

	s := NewScheduler(cfg, func(job Job) { results <- job }, zap.NewNop())
	require.NoError(t, s.Start(t.Context()))
	defer func() { _ = s.Stop(context.Background()) }()

	_, err := s.Schedule("bad", func(context.Context) error { panic("nil map") })
	require.NoError(t, err)

	select {
	case job := <-results:
		assert.Equal(t, JobStatusFailed, job.Status)
		assert.Contains(t, job.Error, "nil map")
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
	}
}

func TestScheduler_StopDropsPendingRetries(t *testing.T) {
	failed := make(chan Job, 1)
	cfg := testPoolConfig()
	cfg.RetryDelay = time.Hour

	s := NewScheduler(cfg, func(job Job) { failed <- job }, zap.NewNop())
	require.NoError(t, s.Start(t.Context()))

	var calls atomic.Int32
	_, err := s.Schedule("report", func(context.Context) error {
		calls.Add(1)
		return errors.New("smtp down")
	})
	require.NoError(t, err)

	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run")
	}
	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.timers) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	s.mu.Lock()
	assert.Empty(t, s.timers)
	s.mu.Unlock()
	assert.Equal(t, int32(1), calls.Load())
}
