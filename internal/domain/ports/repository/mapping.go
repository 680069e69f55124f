package repository

import (
	"context"

	"ramadan-timetable-bot/internal/domain/model"
)

// MappingSource loads the static slot table. Order is preserved.
type MappingSource interface {
	Load(ctx context.Context) ([]model.TimeMapping, error)
}
