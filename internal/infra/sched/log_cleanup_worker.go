package sched

import (
	"context"
	"time"

	"ramadan-timetable-bot/internal/domain/ports/repository"
	"ramadan-timetable-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// LogCleanupWorker periodically removes extraction logs older than the retention.
type LogCleanupWorker struct {
	interval  time.Duration
	retention time.Duration
	logs      repository.ExtractionLogRepository
	log       *zerolog.Logger
	now       func() time.Time
}

func NewLogCleanupWorker(interval, retention time.Duration, logs repository.ExtractionLogRepository, logger *zerolog.Logger) *LogCleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	wLog := logger.With().Str("component", "LogCleanupWorker").Logger()
	return &LogCleanupWorker{
		interval:  interval,
		retention: retention,
		logs:      logs,
		log:       &wLog,
		now:       time.Now,
	}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (w *LogCleanupWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("retention", w.retention).Msg("Starting log cleanup worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping log cleanup worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *LogCleanupWorker) sweep(ctx context.Context) {
	n, err := w.logs.Cleanup(ctx, w.now().Add(-w.retention))
	if err != nil {
		w.log.Error().Err(err).Msg("log cleanup error")
	}
	if n > 0 {
		metrics.AddExtractionLogFilesRemoved(n)
		w.log.Info().Int("count", n).Msg("old extraction logs removed")
	}
}
