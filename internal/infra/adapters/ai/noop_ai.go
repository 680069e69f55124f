package ai

import (
	"context"
	"time"

	"ramadan-timetable-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.VisionAdapter = (*NoopAIAdapter)(nil)

// cannedTimetable is what the noop adapter "reads" from every image.
const cannedTimetable = `[
  {"course_code": "CS201", "day": "Sunday", "start_time": "08:00", "end_time": "09:15"},
  {"course_code": "CS201", "day": "Tuesday", "start_time": "08:00", "end_time": "09:15"},
  {"course_code": "MATH101", "day": "Monday", "start_time": "09:45", "end_time": "11:00"},
  {"course_code": "MATH101", "day": "Wednesday", "start_time": "09:45", "end_time": "11:00"},
  {"course_code": "PHYS110", "day": "Sunday", "start_time": "11:30", "end_time": "13:10"},
  {"course_code": "ENG102", "day": "Thursday", "start_time": "13:15", "end_time": "14:55"}
]`

// NoopAIAdapter answers with a fixed timetable for local runs without a provider key.
type NoopAIAdapter struct {
	log *zerolog.Logger
}

func NewNoopAIAdapter(logger *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{log: logger}
}

func (a *NoopAIAdapter) Provider() string { return "noop" }

func (a *NoopAIAdapter) Analyze(ctx context.Context, req adapter.VisionRequest) (string, adapter.Usage, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	a.log.Debug().Int("image_bytes", len(req.Image.Data)).Msg("noop vision call")
	return cannedTimetable, adapter.Usage{}, nil
}

func (a *NoopAIAdapter) CountTokens(context.Context, string, string) (int, error) {
	return 0, nil
}
