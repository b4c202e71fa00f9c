package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	runs atomic.Int64
}

func (c *countingSweeper) Run(_ context.Context) error {
	c.runs.Add(1)
	return nil
}

func TestRunImmediateSweepAndGracefulStop(t *testing.T) {
	sweeper := &countingSweeper{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(sweeper, time.Hour, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()

	// The first sweep fires before the first tick.
	deadline := time.After(2 * time.Second)
	for sweeper.runs.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("no sweep ran before the first tick")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on shutdown", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunRejectsUnparsableSpec(t *testing.T) {
	sweeper := &countingSweeper{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(sweeper, time.Hour, logger)
	s.spec = "not a cron spec"

	if err := s.Run(context.Background()); err == nil {
		t.Error("Run() with bad spec returned nil error")
	}
}
