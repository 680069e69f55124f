//go:build integration

package postgres

import (
	"context"
	"testing"

	"ramadan-timetable-bot/internal/domain/ports/repository"
)

func TestStatsRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}
	cleanup(t)

	repo := NewStatsRepo(testPool)
	ctx := context.Background()

	deltas := []repository.StatsDelta{
		{Success: true, Extracted: 5, Converted: 5},
		{Success: true, Extracted: 3, Converted: 2, Unmapped: 1},
		{Success: false, Extracted: 2, Unmapped: 2},
	}
	for _, d := range deltas {
		if err := repo.Record(ctx, d); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	s, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if s.Attempts != 3 || s.Successes != 2 || s.Failures != 1 {
		t.Errorf("unexpected outcome counters %+v", s)
	}
	if s.EntriesExtracted != 10 {
		t.Errorf("expected 10 extracted entries, got %d", s.EntriesExtracted)
	}
	if s.Converted != 7 || s.Unmapped != 3 {
		t.Errorf("unexpected mapping counters %+v", s)
	}
}
