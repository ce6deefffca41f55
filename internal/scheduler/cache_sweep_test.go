package scheduler

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct {
	sweeps atomic.Int32
}

func (s *countingSweeper) Sweep() {
	s.sweeps.Add(1)
}

func TestSchedulerStartStop(t *testing.T) {
	scheduler := NewCacheSweepScheduler(&countingSweeper{}, "*/10 * * * *")

	require.NoError(t, scheduler.Start(context.Background()))
	// Second start is a no-op.
	require.NoError(t, scheduler.Start(context.Background()))

	scheduler.Stop()
	scheduler.Stop()
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	scheduler := NewCacheSweepScheduler(&countingSweeper{}, "not a schedule")
	assert.Error(t, scheduler.Start(context.Background()))
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	scheduler := NewCacheSweepScheduler(&countingSweeper{}, "* * * * *")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))
	cancel()

	// Stop after cancellation is safe.
	scheduler.Stop()
}
