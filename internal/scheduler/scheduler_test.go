package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/housing-predictor/internal/backtest"
	"github.com/yourusername/housing-predictor/internal/models"
)

type countingJob struct {
	calls atomic.Int32
}

func (j *countingJob) RunSafely(context.Context) *backtest.Outcome {
	j.calls.Add(1)
	return &backtest.Outcome{
		RunID:   "run",
		Summary: &models.BacktestSummary{MAE: 1, MSE: 1, NumPredictions: 1},
	}
}

func newTestScheduler() *Scheduler {
	log, _ := test.NewNullLogger()
	return NewScheduler(log)
}

func TestScheduler_StartRequiresJobs(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestScheduler_InvalidExpression(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.ScheduleBacktest("not a cron", &countingJob{}))
	assert.Error(t, s.ScheduleBacktest("@hourly", nil))
}

func TestScheduler_Lifecycle(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.ScheduleBacktest("0 3 * * *", &countingJob{}))
	assert.True(t, s.GetNextRun().IsZero())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleBacktest("@hourly", &countingJob{}))

	next := s.GetNextRun()
	assert.False(t, next.IsZero())
	assert.Equal(t, 3, next.Hour())
	assert.Len(t, s.Entries(), 1)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

func TestScheduler_RunsJob(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{}
	require.NoError(t, s.ScheduleBacktest("@every 1s", job))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
}
