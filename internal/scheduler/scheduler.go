// Package scheduler runs the recurring eviction sweep that removes
// idle URL mappings.
package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Evictor removes mappings idle longer than the threshold and reports
// how many were removed.
type Evictor interface {
	EvictIdle(ctx context.Context, threshold time.Duration) (int64, error)
}

// Scheduler triggers the eviction sweep on a fixed cadence. Sweeps run
// sequentially on a single goroutine, so at most one is in flight; a
// tick that arrives while a sweep is still running is dropped by the
// ticker, not queued. Sweep failures are logged and the next tick
// proceeds normally.
type Scheduler struct {
	logger       *slog.Logger
	evictor      Evictor
	interval     time.Duration
	threshold    time.Duration
	sweepTimeout time.Duration
}

func New(logger *slog.Logger, evictor Evictor, interval, threshold, sweepTimeout time.Duration) *Scheduler {
	return &Scheduler{
		logger:       logger,
		evictor:      evictor,
		interval:     interval,
		threshold:    threshold,
		sweepTimeout: sweepTimeout,
	}
}

// Run loops until ctx is cancelled, then returns nil. The sweep in
// flight at cancellation finishes within its own timeout; row-level
// atomicity is the store's concern, not the scheduler's.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("eviction scheduler started",
		slog.Duration("interval", s.interval),
		slog.Duration("idle_threshold", s.threshold))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("eviction scheduler stopped")
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.sweepTimeout)
	defer cancel()

	count, err := s.evictor.EvictIdle(ctx, s.threshold)
	if err != nil {
		s.logger.Error("eviction sweep failed", slog.Any("err", err))
		return
	}

	if count > 0 {
		s.logger.Info("evicted idle urls", slog.Int64("count", count))
	}
}
