package calendar

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/adapter"
)

const (
	productID = "-//ramadan-timetable-bot//EN"
	calName   = "Ramadan timetable"
	uidDomain = "ramadan-timetable-bot"
)

// ICSExporter writes converted entries as weekly recurring VEVENTs.
type ICSExporter struct {
	loc   *time.Location
	weeks int
	now   func() time.Time
}

// Compile-time check
var _ adapter.CalendarExporter = (*ICSExporter)(nil)

// NewICSExporter resolves tz once. weeks below 1 becomes 1.
func NewICSExporter(tz string, weeks int) (*ICSExporter, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("%w: calendar timezone %q: %v", domain.ErrConfiguration, tz, err)
	}
	if weeks < 1 {
		weeks = 1
	}
	return &ICSExporter{loc: loc, weeks: weeks, now: time.Now}, nil
}

func (e *ICSExporter) Export(entries []model.ConvertedEntry, from time.Time) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries to export", domain.ErrInvalidArgument)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calName)
	cal.SetXWRTimezone(e.loc.String())

	stamp := e.now()
	rrule := fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", e.weeks)

	for _, c := range entries {
		day := nextWeekday(from.In(e.loc), c.Entry.Day)
		start := at(day, c.Ramadan.Start)
		end := at(day, c.Ramadan.End)

		ev := cal.AddEvent(eventUID(c))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(c.Entry.Course)
		ev.SetDescription(fmt.Sprintf("Regular slot %s, Ramadan slot %s", c.Entry.Slot, c.Ramadan))
		ev.AddRrule(rrule)
	}

	return []byte(cal.Serialize()), nil
}

// nextWeekday returns midnight of the first day on or after t that falls on d.
func nextWeekday(t time.Time, d time.Weekday) time.Time {
	offset := (int(d) - int(t.Weekday()) + 7) % 7
	y, m, dd := t.Date()
	return time.Date(y, m, dd+offset, 0, 0, 0, 0, t.Location())
}

func at(day time.Time, c model.Clock) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, day.Location())
}

func eventUID(c model.ConvertedEntry) string {
	course := strings.ToLower(strings.ReplaceAll(c.Entry.Course, " ", "-"))
	slot := strings.ReplaceAll(c.Entry.Slot.Key(), ":", "")
	return fmt.Sprintf("%s-%d-%s@%s", course, int(c.Entry.Day), slot, uidDomain)
}
