package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeEvictor struct {
	calls   atomic.Int64
	inSweep atomic.Int64
	overlap atomic.Bool
	delay   time.Duration
	err     error
}

func (e *fakeEvictor) EvictIdle(ctx context.Context, threshold time.Duration) (int64, error) {
	if e.inSweep.Add(1) > 1 {
		e.overlap.Store(true)
	}
	defer e.inSweep.Add(-1)

	e.calls.Add(1)

	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	return 1, e.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_Run(t *testing.T) {
	t.Run("sweeps on each tick and stops on cancel", func(t *testing.T) {
		evictor := &fakeEvictor{}
		s := New(discardLogger(), evictor, 10*time.Millisecond, time.Hour, time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := s.Run(ctx)

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, evictor.calls.Load(), int64(2))
	})

	t.Run("failures do not stop future ticks", func(t *testing.T) {
		evictor := &fakeEvictor{err: assert.AnError}
		s := New(discardLogger(), evictor, 10*time.Millisecond, time.Hour, time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := s.Run(ctx)

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, evictor.calls.Load(), int64(2))
	})

	t.Run("at most one sweep in flight", func(t *testing.T) {
		evictor := &fakeEvictor{delay: 30 * time.Millisecond}
		s := New(discardLogger(), evictor, 10*time.Millisecond, time.Hour, time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		err := s.Run(ctx)

		assert.NoError(t, err)
		assert.False(t, evictor.overlap.Load())
		// Slow sweeps skip ticks instead of queueing them.
		assert.Less(t, evictor.calls.Load(), int64(10))
	})

	t.Run("sweep carries a deadline", func(t *testing.T) {
		evictor := &fakeEvictor{delay: time.Minute}
		s := New(discardLogger(), evictor, 10*time.Millisecond, time.Hour, 20*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		err := s.Run(ctx)

		assert.NoError(t, err)
		assert.GreaterOrEqual(t, evictor.calls.Load(), int64(1))
	})
}
