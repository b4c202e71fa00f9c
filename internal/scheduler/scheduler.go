// Package scheduler owns the main loop: cron-driven sweeps with an immediate
// first run so subscribers see activity without waiting for the first tick.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper is the unit of work the scheduler drives on each tick.
type Sweeper interface {
	Run(ctx context.Context) error
}

// Scheduler wraps robfig/cron around a Sweeper.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	spec    string // cron spec, e.g. "@every 30m"
	logger  *slog.Logger
}

// New creates a scheduler that runs one sweep per interval.
func New(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		spec:    fmt.Sprintf("@every %s", interval),
		logger:  logger,
	}
}

// Run starts the cron loop, fires an immediate sweep, and blocks until ctx
// is cancelled. It returns nil on graceful shutdown.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		s.sweep(ctx)
	}); err != nil {
		return fmt.Errorf("registering sweep job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec)

	// Immediate first sweep so a fresh start records its checkpoint now.
	s.sweep(ctx)

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")

	// Stop returns once in-flight jobs finish.
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.sweeper.Run(ctx); err != nil {
		s.logger.Error("sweep failed", "error", err)
	}
}
