package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchday-consensus/internal/config"
)

type fakeCounter struct {
	n     int
	err   error
	calls atomic.Int32
}

func (f *fakeCounter) CountUnsettled(context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

type fakeSweeper struct {
	swept atomic.Int32
}

func (f *fakeSweeper) DeleteExpired() { f.swept.Add(1) }
func (f *fakeSweeper) ItemCount() int { return 0 }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func TestRefreshPendingGauge(t *testing.T) {
	n, err := RefreshPendingGauge(context.Background(), &fakeCounter{n: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = RefreshPendingGauge(context.Background(), &fakeCounter{err: errors.New("db down")})
	assert.ErrorContains(t, err, "db down")
}

func TestFromConfigSchedulesJobs(t *testing.T) {
	cfg := config.SchedulerConfig{Enabled: true, PendingGaugeIntervalSecs: 60, CacheSweepIntervalSeconds: 300}

	s, err := FromConfig(cfg, &fakeCounter{}, &fakeSweeper{}, quietLogger())
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 2)

	s, err = FromConfig(cfg, &fakeCounter{}, nil, quietLogger())
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 1)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(quietLogger())
	assert.Error(t, s.Start(), "no jobs scheduled")

	require.NoError(t, s.ScheduleCacheSweep(1, &fakeSweeper{}))
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.SchedulePendingGauge(60, &fakeCounter{}))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

func TestClampInterval(t *testing.T) {
	assert.Equal(t, "5s", clampInterval(1).String())
	assert.Equal(t, "1m0s", clampInterval(60).String())
}
