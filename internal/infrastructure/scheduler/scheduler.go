package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/gbsl/edsync/internal/application/ports"
)

// Scheduler runs periodic resync jobs
type Scheduler struct {
	cron   *cron.Cron
	logger ports.LoggingGateway
}

// NewScheduler creates a new scheduler using five-field cron expressions
func NewScheduler(logger ports.LoggingGateway) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

// Schedule runs job on spec. A run is skipped while the previous one is
// still going.
func (s *Scheduler) Schedule(ctx context.Context, spec string, job func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		s.logger.LogDebug("scheduled resync starting", map[string]interface{}{"schedule": spec})
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries returns the number of scheduled jobs
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}
