// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"
)

// Sweeper is anything with expired entries to reclaim. Satisfied by
// cache.ResolutionCache.
type Sweeper interface {
	Sweep()
}

// CacheSweepScheduler periodically sweeps expired cache entries.
type CacheSweepScheduler struct {
	sweeper  Sweeper
	schedule string

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewCacheSweepScheduler creates a scheduler that runs the sweep on the
// given cron schedule (standard five-field format).
func NewCacheSweepScheduler(sweeper Sweeper, schedule string) *CacheSweepScheduler {
	return &CacheSweepScheduler{
		sweeper:  sweeper,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *CacheSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, s.sweeper.Sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule cache sweep: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Cache sweep scheduler: started with schedule '%s'", s.schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler.
func (s *CacheSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.isRunning = false

	log.Printf("Cache sweep scheduler: stopped")
}
