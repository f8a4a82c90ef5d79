package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type countingScanner struct {
	calls int64
	err   error
}

func (c *countingScanner) Scan(_ context.Context, _ time.Time) (int, error) {
	atomic.AddInt64(&c.calls, 1)
	return 0, c.err
}

func TestOverdueWorkerRunsOnInterval(t *testing.T) {
	scanner := &countingScanner{}
	w := NewOverdueWorker(scanner, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&scanner.calls) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestOverdueWorkerKeepsRunningAfterScanError(t *testing.T) {
	scanner := &countingScanner{err: context.DeadlineExceeded}
	w := NewOverdueWorker(scanner, 5*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&scanner.calls) >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestOverdueWorkerDefaultsInterval(t *testing.T) {
	w := NewOverdueWorker(&countingScanner{}, 0, zerolog.Nop())
	require.Equal(t, 24*time.Hour, w.interval)
}
