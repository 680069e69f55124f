package model

import "sort"

// ConvertedEntry is a timetable entry placed into its Ramadan slot.
type ConvertedEntry struct {
	Entry   TimetableEntry
	Ramadan TimeRange
	Match   MatchKind
}

// UnmappedEntry is an entry whose slot has no mapping. Suggestion is the
// nearest mapping in the table, if any.
type UnmappedEntry struct {
	Entry      TimetableEntry
	Suggestion *TimeMapping
}

// Conversion is the outcome of mapping every extracted entry.
type Conversion struct {
	Converted []ConvertedEntry
	Unmapped  []UnmappedEntry
	// Skipped counts rows the extractor dropped as invalid.
	Skipped int
}

// SortConverted orders entries by timetable day (Sunday first), then start, then course.
func SortConverted(entries []ConvertedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Entry.Day != b.Entry.Day {
			return a.Entry.Day < b.Entry.Day
		}
		if a.Ramadan.Start != b.Ramadan.Start {
			return a.Ramadan.Start < b.Ramadan.Start
		}
		return a.Entry.Course < b.Entry.Course
	})
}

// Courses returns distinct course codes in first-seen order.
func Courses(entries []ConvertedEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Entry.Course]; ok {
			continue
		}
		seen[e.Entry.Course] = struct{}{}
		out = append(out, e.Entry.Course)
	}
	return out
}
