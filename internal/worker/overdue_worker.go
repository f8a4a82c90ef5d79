// Package worker hosts the background loops that run alongside request
// handling.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdesk/taskdesk-api/internal/service"
)

// OverdueWorker runs the overdue scan on a fixed interval, independently of
// request traffic. Overlapping scans may double-log; that is accepted
// behaviour of the scanner itself.
type OverdueWorker struct {
	scanner  service.OverdueScanner
	interval time.Duration
	logger   zerolog.Logger
}

// NewOverdueWorker builds the worker. A non-positive interval defaults to
// one scan per day.
func NewOverdueWorker(scanner service.OverdueScanner, interval time.Duration, logger zerolog.Logger) *OverdueWorker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	return &OverdueWorker{
		scanner:  scanner,
		interval: interval,
		logger:   logger.With().Str("component", "overdue_worker").Logger(),
	}
}

// Start blocks running the scan loop until the context is cancelled. Run it
// in its own goroutine.
func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.interval).Msg("overdue worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("overdue worker stopped")
			return
		case <-ticker.C:
			w.runScan(ctx)
		}
	}
}

func (w *OverdueWorker) runScan(ctx context.Context) {
	processed, err := w.scanner.Scan(ctx, time.Now())
	if err != nil {
		w.logger.Error().Err(err).Msg("overdue scan failed")
		return
	}

	w.logger.Info().Int("processed", processed).Msg("overdue scan completed")
}
