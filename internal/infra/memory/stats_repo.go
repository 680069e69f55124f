package memory

import (
	"context"
	"sync"

	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/repository"
)

// StatsRepo holds the counters for the life of the process.
type StatsRepo struct {
	mu    sync.RWMutex
	stats model.Stats
}

// Compile-time check
var _ repository.StatsRepository = (*StatsRepo)(nil)

func NewStatsRepo() *StatsRepo { return &StatsRepo{} }

func (r *StatsRepo) Record(ctx context.Context, d repository.StatsDelta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Attempts++
	if d.Success {
		r.stats.Successes++
	} else {
		r.stats.Failures++
	}
	r.stats.EntriesExtracted += int64(d.Extracted)
	r.stats.Converted += int64(d.Converted)
	r.stats.Unmapped += int64(d.Unmapped)
	return nil
}

func (r *StatsRepo) Get(ctx context.Context) (model.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats, nil
}
