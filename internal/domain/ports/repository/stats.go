package repository

import (
	"context"

	"ramadan-timetable-bot/internal/domain/model"
)

// StatsDelta is one attempt's contribution to the aggregate counters.
type StatsDelta struct {
	Success   bool
	Extracted int
	Converted int
	Unmapped  int
}

// StatsRepository keeps aggregate conversion counters. Implementations must be safe for concurrent use.
type StatsRepository interface {
	Record(ctx context.Context, d StatsDelta) error
	Get(ctx context.Context) (model.Stats, error)
}
