package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func noop(context.Context) error { return nil }

func TestSchedule_Validate(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		wantErr  bool
	}{
		{"daily", Schedule{Name: "a", Recurrence: Daily, Hour: 3, Task: noop}, false},
		{"monthly", Schedule{Name: "a", Recurrence: Monthly, Day: 1, Hour: 4, Minute: 30, Task: noop}, false},
		{"missing task", Schedule{Name: "a", Recurrence: Daily}, true},
		{"bad hour", Schedule{Name: "a", Recurrence: Daily, Hour: 24, Task: noop}, true},
		{"bad minute", Schedule{Name: "a", Recurrence: Daily, Minute: 60, Task: noop}, true},
		{"day 29", Schedule{Name: "a", Recurrence: Monthly, Day: 29, Task: noop}, true},
		{"unknown recurrence", Schedule{Name: "a", Recurrence: "HOURLY", Task: noop}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchedule_Due(t *testing.T) {
	monthly := Schedule{Recurrence: Monthly, Day: 1, Hour: 4, Minute: 30}
	daily := Schedule{Recurrence: Daily, Hour: 3}

	assert.True(t, monthly.Due(time.Date(2026, 3, 1, 4, 30, 10, 0, time.UTC)))
	assert.False(t, monthly.Due(time.Date(2026, 3, 2, 4, 30, 0, 0, time.UTC)))
	assert.False(t, monthly.Due(time.Date(2026, 3, 1, 4, 31, 0, 0, time.UTC)))
	assert.True(t, daily.Due(time.Date(2026, 3, 17, 3, 0, 0, 0, time.UTC)))
	assert.False(t, daily.Due(time.Date(2026, 3, 17, 2, 0, 0, 0, time.UTC)))
}

func TestSchedule_NextRun(t *testing.T) {
	monthly := Schedule{Recurrence: Monthly, Day: 1, Hour: 4, Minute: 30}
	daily := Schedule{Recurrence: Daily, Hour: 3}

	assert.Equal(t,
		time.Date(2027, 1, 1, 4, 30, 0, 0, time.UTC),
		monthly.NextRun(time.Date(2026, 12, 1, 4, 30, 0, 0, time.UTC)))
	assert.Equal(t,
		time.Date(2026, 12, 1, 4, 30, 0, 0, time.UTC),
		monthly.NextRun(time.Date(2026, 12, 1, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t,
		time.Date(2026, 3, 18, 3, 0, 0, 0, time.UTC),
		daily.NextRun(time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC)))
}

func TestCronTrigger_RunsOncePerPeriod(t *testing.T) {
	ran := make(chan struct{}, 4)
	schedules := []Schedule{{
		Name:       "report",
		Recurrence: Monthly,
		Day:        1,
		Hour:       4,
		Minute:     30,
		Task: func(context.Context) error {
			ran <- struct{}{}
			return nil
		},
	}}

	c, err := NewCronTrigger(CronTriggerConfig{CheckInterval: time.Hour}, testPoolConfig(), schedules, zap.NewNop())
	require.NoError(t, err)
	c.now = func() time.Time { return time.Date(2026, 11, 1, 4, 30, 5, 0, time.UTC) }
	require.NoError(t, c.Start(t.Context()))
	defer func() { _ = c.Stop(context.Background()) }()

	c.checkAndTrigger()
	c.checkAndTrigger()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("schedule did not run")
	}
	select {
	case <-ran:
		t.Fatal("schedule ran twice in the same period")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Eventually(t, func() bool {
		st := c.Status()
		return len(st) == 1 && st[0].LastStatus == JobStatusSuccess
	}, time.Second, 10*time.Millisecond)
}

func TestCronTrigger_TriggerNow(t *testing.T) {
	c, err := NewCronTrigger(DefaultCronTriggerConfig(), testPoolConfig(),
		[]Schedule{{Name: "cleanup", Recurrence: Daily, Task: noop}}, zap.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, c.TriggerNow("cleanup"), ErrSchedulerNotRunning)

	require.NoError(t, c.Start(t.Context()))
	defer func() { _ = c.Stop(context.Background()) }()

	assert.NoError(t, c.TriggerNow("cleanup"))
	assert.ErrorIs(t, c.TriggerNow("missing"), ErrUnknownJob)
}

type MockMonthlyReporter struct {
	mock.Mock
}

func (m *MockMonthlyReporter) SendPreviousMonth(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockCartCleaner struct {
	mock.Mock
}

func (m *MockCartCleaner) CleanupAbandoned(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestNewStorefrontTrigger(t *testing.T) {
	cfg := config.SchedulerConfig{
		MaxConcurrentJobs: 1,
		JobTimeout:        time.Second,
		MonthlyReportDay:  1,
		MonthlyReportHour: 4,
		MonthlyReportMin:  30,
		CartCleanupHour:   3,
		Timezone:          "Europe/Berlin",
	}
	reports := new(MockMonthlyReporter)
	carts := new(MockCartCleaner)

	c, err := NewStorefrontTrigger(cfg, reports, carts, zap.NewNop())
	require.NoError(t, err)

	st := c.Status()
	require.Len(t, st, 2)
	assert.Equal(t, JobMonthlyReport, st[0].Name)
	assert.Equal(t, 1, st[0].NextRunAt.Day())
	assert.Equal(t, 4, st[0].NextRunAt.Hour())
	assert.Equal(t, "Europe/Berlin", st[0].NextRunAt.Location().String())
	assert.Equal(t, JobCartCleanup, st[1].Name)
	assert.Equal(t, 3, st[1].NextRunAt.Hour())

	_, err = NewStorefrontTrigger(config.SchedulerConfig{Timezone: "Mars/Olympus"}, reports, carts, zap.NewNop())
	assert.Error(t, err)
}

func TestCartCleanupTask(t *testing.T) {
	carts := new(MockCartCleaner)
	carts.On("CleanupAbandoned", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(3), nil).Once()
	carts.On("CleanupAbandoned", mock.Anything, mock.AnythingOfType("time.Time")).Return(int64(0), errors.New("db down")).Once()

	task := cartCleanupTask(carts, zap.NewNop())

	assert.NoError(t, task(t.Context()))
	assert.EqualError(t, task(t.Context()), "db down")
	carts.AssertExpectations(t)
}
