package redis

import (
	"context"
	"fmt"
	"strconv"

	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/repository"
)

const statsKey = "stats:conversions"

const (
	fieldAttempts  = "attempts"
	fieldSuccesses = "successes"
	fieldFailures  = "failures"
	fieldExtracted = "entries_extracted"
	fieldConverted = "converted"
	fieldUnmapped  = "unmapped"
)

// StatsRepo keeps the aggregate counters in one hash so several bot
// instances can share them.
type StatsRepo struct {
	client RedisClient
	key    string
}

// Compile-time check
var _ repository.StatsRepository = (*StatsRepo)(nil)

func NewStatsRepo(client RedisClient) *StatsRepo {
	return &StatsRepo{client: client, key: statsKey}
}

func (r *StatsRepo) Record(ctx context.Context, d repository.StatsDelta) error {
	outcome := fieldFailures
	if d.Success {
		outcome = fieldSuccesses
	}
	incs := []HashIncr{{fieldAttempts, 1}, {outcome, 1}}
	for _, inc := range []HashIncr{
		{fieldExtracted, int64(d.Extracted)},
		{fieldConverted, int64(d.Converted)},
		{fieldUnmapped, int64(d.Unmapped)},
	} {
		if inc.N != 0 {
			incs = append(incs, inc)
		}
	}

	if err := r.client.HIncrByAll(ctx, r.key, incs); err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return nil
}

func (r *StatsRepo) Get(ctx context.Context) (model.Stats, error) {
	h, err := r.client.HGetAll(ctx, r.key)
	if err != nil {
		return model.Stats{}, fmt.Errorf("stats: %w", err)
	}
	n := func(field string) int64 {
		v, err := strconv.ParseInt(h[field], 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return model.Stats{
		Attempts:         n(fieldAttempts),
		Successes:        n(fieldSuccesses),
		Failures:         n(fieldFailures),
		EntriesExtracted: n(fieldExtracted),
		Converted:        n(fieldConverted),
		Unmapped:         n(fieldUnmapped),
	}, nil
}
