package worker

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCompleter struct {
	calls atomic.Int64
	err   error
}

func (c *countingCompleter) CompleteElapsed(_ context.Context, _ time.Time) (int64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return 1, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestCompletionSweeper_SweepsOnStartAndTick(t *testing.T) {
	completer := &countingCompleter{}
	sweeper := NewCompletionSweeper(completer, 10*time.Millisecond, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return completer.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond, "expected initial sweep plus ticks")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancellation")
	}
}

func TestCompletionSweeper_StopsOnCancel(t *testing.T) {
	completer := &countingCompleter{}
	sweeper := NewCompletionSweeper(completer, time.Hour, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancelled context")
	}
	assert.EqualValues(t, 1, completer.calls.Load(), "only the initial sweep should run")
}
