// Package worker runs background maintenance loops for the booking domain.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// BookingCompleter marks elapsed confirmed bookings as completed.
type BookingCompleter interface {
	CompleteElapsed(ctx context.Context, now time.Time) (int64, error)
}

// CompletionSweeper periodically resolves confirmed bookings whose check-out
// has passed into the completed state.
type CompletionSweeper struct {
	completer BookingCompleter
	interval  time.Duration
	logger    *slog.Logger
}

// NewCompletionSweeper creates a sweeper that runs at the given interval.
func NewCompletionSweeper(completer BookingCompleter, interval time.Duration, logger *slog.Logger) *CompletionSweeper {
	return &CompletionSweeper{
		completer: completer,
		interval:  interval,
		logger:    logger,
	}
}

// Run sweeps immediately and then on every tick until the context is
// cancelled.
func (s *CompletionSweeper) Run(ctx context.Context) {
	s.logger.InfoContext(ctx, "completion sweeper started",
		slog.Duration("interval", s.interval),
	)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "completion sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CompletionSweeper) sweep(ctx context.Context) {
	n, err := s.completer.CompleteElapsed(ctx, time.Now().UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "completion sweep failed",
			slog.String("error", err.Error()),
		)
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "completion sweep finished",
			slog.Int64("completed", n),
		)
	}
}
