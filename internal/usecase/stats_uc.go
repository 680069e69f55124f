package usecase

import (
	"context"

	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Snapshot(ctx context.Context) (model.Stats, error)
}

type statsUC struct {
	repo repository.StatsRepository

	log *zerolog.Logger
}

func NewStatsUseCase(repo repository.StatsRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{repo: repo, log: logger}
}

func (s *statsUC) Snapshot(ctx context.Context) (model.Stats, error) {
	st, err := s.repo.Get(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to read conversion stats")
		return model.Stats{}, err
	}
	return st, nil
}
