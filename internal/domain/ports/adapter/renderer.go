package adapter

import (
	"context"

	"ramadan-timetable-bot/internal/domain/model"
)

// TimetableRenderer draws converted entries as an image.
type TimetableRenderer interface {
	// Render returns PNG bytes. Failures wrap domain.ErrRender.
	Render(ctx context.Context, entries []model.ConvertedEntry) ([]byte, error)
}
