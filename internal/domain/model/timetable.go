package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ramadan-timetable-bot/internal/domain"
)

// Clock is a time of day expressed in minutes since midnight.
type Clock int

// NewClock builds a Clock from hour and minute, validating both.
func NewClock(hour, minute int) (Clock, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: invalid time %02d:%02d", domain.ErrInvalidArgument, hour, minute)
	}
	return Clock(hour*60 + minute), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// String renders the clock as zero-padded 24h HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// ParseClock accepts the notations found on printed timetables and in model output:
// "08:00", "8:0", "8.0", "9.15", "13.30" and a bare hour "8".
// A single minute digit is read as tens ("9.3" is 09:30), matching the "11.0" style.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty time", domain.ErrInvalidArgument)
	}

	sep := strings.IndexAny(s, ".:")
	if sep < 0 {
		h, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid time %q", domain.ErrInvalidArgument, s)
		}
		return NewClock(h, 0)
	}

	hourPart := strings.TrimSpace(s[:sep])
	minPart := strings.TrimSpace(s[sep+1:])
	if len(minPart) == 1 {
		minPart += "0"
	}
	if hourPart == "" || minPart == "" || len(minPart) > 2 {
		return 0, fmt.Errorf("%w: invalid time %q", domain.ErrInvalidArgument, s)
	}
	h, err := strconv.Atoi(hourPart)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid time %q", domain.ErrInvalidArgument, s)
	}
	m, err := strconv.Atoi(minPart)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid time %q", domain.ErrInvalidArgument, s)
	}
	return NewClock(h, m)
}

// TimeRange is a half-open class slot. Start is always before End.
type TimeRange struct {
	Start Clock
	End   Clock
}

// NewTimeRange validates ordering.
func NewTimeRange(start, end Clock) (TimeRange, error) {
	if start >= end {
		return TimeRange{}, fmt.Errorf("%w: start %s is not before end %s", domain.ErrInvalidArgument, start, end)
	}
	return TimeRange{Start: start, End: end}, nil
}

// ParseTimeRange parses "HH:MM-HH:MM" (any notation ParseClock accepts on either side).
func ParseTimeRange(s string) (TimeRange, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("%w: invalid time range %q", domain.ErrInvalidArgument, s)
	}
	start, err := ParseClock(parts[0])
	if err != nil {
		return TimeRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return TimeRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	r, err := NewTimeRange(start, end)
	if err != nil {
		return TimeRange{}, fmt.Errorf("range %q: %w", s, err)
	}
	return r, nil
}

// Key is the normalised lookup form "HH:MM-HH:MM".
func (r TimeRange) Key() string { return r.Start.String() + "-" + r.End.String() }

func (r TimeRange) String() string { return r.Key() }

func (r TimeRange) Duration() time.Duration {
	return time.Duration(r.End-r.Start) * time.Minute
}

// TimetableEntry is one class block read from a timetable image.
type TimetableEntry struct {
	Course string
	Day    time.Weekday
	Slot   TimeRange
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,

	"الأحد":    time.Sunday,
	"الاحد":    time.Sunday,
	"الاثنين":  time.Monday,
	"الإثنين":  time.Monday,
	"الثلاثاء": time.Tuesday,
	"الأربعاء": time.Wednesday,
	"الاربعاء": time.Wednesday,
	"الخميس":   time.Thursday,
	"الجمعة":   time.Friday,
	"السبت":    time.Saturday,
}

// ParseWeekday accepts English names, three-letter abbreviations and Arabic names.
func ParseWeekday(s string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdayNames[key]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: unknown day %q", domain.ErrInvalidArgument, s)
}

var arabicDayNames = [...]string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت"}

// ArabicWeekday returns the Arabic name of d.
func ArabicWeekday(d time.Weekday) string {
	return arabicDayNames[int(d)%len(arabicDayNames)]
}

// TimetableDays is the column order of the university timetable, Sunday first.
var TimetableDays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}
