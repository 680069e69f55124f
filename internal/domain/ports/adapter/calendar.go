package adapter

import (
	"time"

	"ramadan-timetable-bot/internal/domain/model"
)

// CalendarExporter turns a converted timetable into an iCalendar document
// with one weekly recurring event per entry, starting from the week of from.
type CalendarExporter interface {
	Export(entries []model.ConvertedEntry, from time.Time) ([]byte, error)
}
