package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/repository"
	"ramadan-timetable-bot/internal/infra/logging"
)

// querier is the part of *pgxpool.Pool the repositories use.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

var _ repository.StatsRepository = (*statsRepo)(nil)

// statsRepo stores one anonymous row per conversion attempt and aggregates on read.
type statsRepo struct {
	db querier
}

func NewStatsRepo(db querier) repository.StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) Record(ctx context.Context, d repository.StatsDelta) error {
	const q = `
INSERT INTO conversions (id, trace_id, success, extracted, converted, unmapped)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, q,
		uuid.NewString(),
		logging.TraceID(ctx),
		d.Success,
		d.Extracted,
		d.Converted,
		d.Unmapped,
	)
	if err != nil {
		return fmt.Errorf("record conversion: %w", classify(err))
	}
	return nil
}

func (r *statsRepo) Get(ctx context.Context) (model.Stats, error) {
	const q = `
SELECT
    COUNT(*),
    COUNT(*) FILTER (WHERE success),
    COUNT(*) FILTER (WHERE NOT success),
    COALESCE(SUM(extracted), 0),
    COALESCE(SUM(converted), 0),
    COALESCE(SUM(unmapped), 0)
FROM conversions`

	var s model.Stats
	err := r.db.QueryRow(ctx, q).Scan(
		&s.Attempts,
		&s.Successes,
		&s.Failures,
		&s.EntriesExtracted,
		&s.Converted,
		&s.Unmapped,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Stats{}, nil
		}
		return model.Stats{}, fmt.Errorf("read stats: %w", classify(err))
	}
	return s, nil
}

// undefinedTable is SQLSTATE 42P01.
const undefinedTable = "42P01"

// classify turns a missing schema into a configuration error; anything else is returned as is.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s (schema not applied?)", domain.ErrConfiguration, pgErr.Message)
	}
	return err
}
