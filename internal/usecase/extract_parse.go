package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"ramadan-timetable-bot/internal/domain/model"
)

// looseString accepts a JSON string, number or null.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = looseString(v)
	default:
		*s = looseString(b)
	}
	return nil
}

type rawEntry struct {
	CourseCode looseString `json:"course_code"`
	Course     looseString `json:"course"`
	Day        looseString `json:"day"`
	StartTime  looseString `json:"start_time"`
	EndTime    looseString `json:"end_time"`
}

var (
	fenceLine     = regexp.MustCompile("(?m)^\\s*```[a-zA-Z]*\\s*$")
	trailingComma = regexp.MustCompile(`,\s*([\]}])`)

	errNoJSONArray = errors.New("no JSON array in model output")
)

// parseModelOutput decodes the model answer into raw rows. It tolerates
// Markdown fences, prose around the array, trailing commas and a wrapping
// {"classes": [...]} object.
func parseModelOutput(text string) ([]rawEntry, error) {
	text = strings.TrimSpace(fenceLine.ReplaceAllString(text, ""))
	if text == "" {
		return nil, errNoJSONArray
	}

	if rows, err := decodeRows(text); err == nil {
		return rows, nil
	}

	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, errNoJSONArray
	}
	candidate := trailingComma.ReplaceAllString(text[start:end+1], "$1")
	rows, err := decodeRows(candidate)
	if err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	return rows, nil
}

func decodeRows(s string) ([]rawEntry, error) {
	var rows []rawEntry
	if err := json.Unmarshal([]byte(s), &rows); err == nil {
		return rows, nil
	}
	var wrapped struct {
		Classes []rawEntry `json:"classes"`
		Entries []rawEntry `json:"entries"`
	}
	if err := json.Unmarshal([]byte(s), &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Classes != nil {
		return wrapped.Classes, nil
	}
	if wrapped.Entries != nil {
		return wrapped.Entries, nil
	}
	return nil, errNoJSONArray
}

var placeholderCourses = map[string]struct{}{
	"":      {},
	"NONE":  {},
	"N/A":   {},
	"NA":    {},
	"-":     {},
	"BREAK": {},
	"EMPTY": {},
	"NULL":  {},
}

// validateRows turns raw rows into entries. Invalid or placeholder rows are
// dropped and counted; exact duplicates are dropped silently.
func validateRows(rows []rawEntry) (entries []model.TimetableEntry, skipped int) {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		e, ok := validateRow(r)
		if !ok {
			skipped++
			continue
		}
		k := fmt.Sprintf("%s|%d|%s", e.Course, e.Day, e.Slot.Key())
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		entries = append(entries, e)
	}
	return entries, skipped
}

func validateRow(r rawEntry) (model.TimetableEntry, bool) {
	code := string(r.CourseCode)
	if strings.TrimSpace(code) == "" {
		code = string(r.Course)
	}
	code = strings.ToUpper(strings.Join(strings.Fields(code), " "))
	if _, placeholder := placeholderCourses[code]; placeholder {
		return model.TimetableEntry{}, false
	}

	day, err := model.ParseWeekday(string(r.Day))
	if err != nil {
		return model.TimetableEntry{}, false
	}
	start, err := model.ParseClock(string(r.StartTime))
	if err != nil {
		return model.TimetableEntry{}, false
	}
	end, err := model.ParseClock(string(r.EndTime))
	if err != nil {
		return model.TimetableEntry{}, false
	}
	slot, err := model.NewTimeRange(start, end)
	if err != nil {
		return model.TimetableEntry{}, false
	}
	return model.TimetableEntry{Course: code, Day: day, Slot: slot}, true
}
