package application

import (
	"context"

	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/adapter"
	"ramadan-timetable-bot/internal/usecase"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----
// Using interfaces enables tests to pass in light-weight mocks.

type Translator interface {
	T(key string, args ...interface{}) string
}

type MappingUseCaseIface interface {
	All() []model.TimeMapping
}

type ConvertUseCaseIface interface {
	Convert(ctx context.Context, img adapter.Image, progress usecase.ProgressFunc) (*usecase.ConvertResult, error)
}

type StatsUseCaseIface interface {
	Snapshot(ctx context.Context) (model.Stats, error)
}
