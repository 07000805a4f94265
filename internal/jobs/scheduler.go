// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"fmt"
	"time"

	"gacha_backend/internal/locker"
	"gacha_backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler periodically sweeps the lock registry for orphans. A sweep
// hit means an operation leaked its lock; in a healthy process every
// sweep finds nothing.
type Scheduler struct {
	cron  *cron.Cron
	locks *locker.Manager
}

func NewScheduler(locks *locker.Manager) *Scheduler {
	return &Scheduler{cron: cron.New(), locks: locks}
}

// Start registers the sweep at the given interval and starts the cron.
func (s *Scheduler) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, func() {
		if n := s.locks.Sweep(); n > 0 {
			logger.Error("lock sweep released orphaned locks", "count", n)
		}
	}); err != nil {
		return fmt.Errorf("schedule lock sweep: %w", err)
	}

	s.cron.Start()
	logger.Info("scheduler started", "sweep_interval", interval)
	return nil
}

// Stop waits for any running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("scheduler stopped")
}
