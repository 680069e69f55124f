//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/usecase"
)

func newMapper(t *testing.T, tolerance time.Duration) usecase.MappingUseCase {
	t.Helper()
	uc, err := usecase.NewMappingUseCase(context.Background(), &MockMappingSource{Mappings: sampleMappings(t)}, tolerance, newTestLogger())
	if err != nil {
		t.Fatalf("NewMappingUseCase failed: %v", err)
	}
	return uc
}

func TestMappingUseCase(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		uc := newMapper(t, 0)
		got, kind, err := uc.Map(mustRange(t, "08:00-09:15"))
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if got.Key() != "10:00-10:50" || kind != model.MatchExact {
			t.Errorf("expected exact 10:00-10:50, got %s (%s)", got, kind)
		}
	})

	t.Run("exact match wins over fuzzy candidates", func(t *testing.T) {
		uc := newMapper(t, 30*time.Minute)
		got, kind, err := uc.Map(mustRange(t, "09:45-11:00"))
		if err != nil || got.Key() != "11:00-11:50" || kind != model.MatchExact {
			t.Errorf("expected exact 11:00-11:50, got %s %s %v", got, kind, err)
		}
	})

	t.Run("fuzzy match within tolerance", func(t *testing.T) {
		uc := newMapper(t, 5*time.Minute)
		got, kind, err := uc.Map(mustRange(t, "08:00-09:10"))
		if err != nil {
			t.Fatalf("expected no error, but got %v", err)
		}
		if got.Key() != "10:00-10:50" || kind != model.MatchFuzzy {
			t.Errorf("expected fuzzy 10:00-10:50, got %s (%s)", got, kind)
		}
	})

	t.Run("fuzzy picks the smallest total distance", func(t *testing.T) {
		uc := newMapper(t, 30*time.Minute)
		// 09:45-11:20 is 20m from 09:45-11:00 and 5m from 09:45-11:25
		got, _, err := uc.Map(mustRange(t, "09:45-11:20"))
		if err != nil || got.Key() != "11:00-12:05" {
			t.Errorf("expected 11:00-12:05, got %s %v", got, err)
		}
	})

	t.Run("fuzzy ties are broken by table order", func(t *testing.T) {
		table := []model.TimeMapping{
			{Before: mustRange(t, "10:00-11:00"), During: mustRange(t, "11:00-11:40")},
			{Before: mustRange(t, "10:10-11:10"), During: mustRange(t, "11:45-12:25")},
		}
		uc, err := usecase.NewMappingUseCase(context.Background(), &MockMappingSource{Mappings: table}, 5*time.Minute, newTestLogger())
		if err != nil {
			t.Fatalf("NewMappingUseCase failed: %v", err)
		}
		// 10:05-11:05 is 10 minutes away from both rows in total
		got, kind, err := uc.Map(mustRange(t, "10:05-11:05"))
		if err != nil || kind != model.MatchFuzzy {
			t.Fatalf("expected a fuzzy match, got %s %v", kind, err)
		}
		if got.Key() != "11:00-11:40" {
			t.Errorf("expected the first row to win the tie, got %s", got)
		}
	})

	t.Run("miss outside tolerance carries a suggestion", func(t *testing.T) {
		uc := newMapper(t, 5*time.Minute)
		_, _, err := uc.Map(mustRange(t, "08:30-09:45"))
		if !errors.Is(err, domain.ErrMappingNotFound) {
			t.Fatalf("expected ErrMappingNotFound, got %v", err)
		}
		var nf *usecase.MappingNotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected *MappingNotFoundError, got %T", err)
		}
		if nf.Suggestion == nil || nf.Suggestion.Before.Key() != "08:00-09:15" {
			t.Errorf("expected suggestion 08:00-09:15, got %+v", nf.Suggestion)
		}
	})

	t.Run("fuzzy disabled with zero tolerance", func(t *testing.T) {
		uc := newMapper(t, 0)
		if _, _, err := uc.Map(mustRange(t, "08:00-09:10")); !errors.Is(err, domain.ErrMappingNotFound) {
			t.Errorf("expected a miss with fuzzy disabled, got %v", err)
		}
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		uc := newMapper(t, 5*time.Minute)
		slot := mustRange(t, "13:15-14:50")
		first, k1, _ := uc.Map(slot)
		for i := 0; i < 20; i++ {
			got, k, _ := uc.Map(slot)
			if got != first || k != k1 {
				t.Fatalf("non-deterministic result: %s/%s vs %s/%s", got, k, first, k1)
			}
		}
	})

	t.Run("MapAll splits converted and unmapped", func(t *testing.T) {
		uc := newMapper(t, 5*time.Minute)
		entries := []model.TimetableEntry{
			{Course: "MATH101", Day: time.Tuesday, Slot: mustRange(t, "11:30-13:10")},
			{Course: "CS201", Day: time.Sunday, Slot: mustRange(t, "08:00-09:15")},
			{Course: "PHYS110", Day: time.Monday, Slot: mustRange(t, "17:00-18:15")},
		}
		conv := uc.MapAll(entries)
		if len(conv.Converted) != 2 || len(conv.Unmapped) != 1 {
			t.Fatalf("expected 2 converted / 1 unmapped, got %d / %d", len(conv.Converted), len(conv.Unmapped))
		}
		if conv.Converted[0].Entry.Course != "CS201" {
			t.Errorf("expected Sunday entry first, got %s", conv.Converted[0].Entry.Course)
		}
		if conv.Unmapped[0].Entry.Course != "PHYS110" || conv.Unmapped[0].Suggestion == nil {
			t.Errorf("unexpected unmapped entry: %+v", conv.Unmapped[0])
		}
	})

	t.Run("All returns a copy in table order", func(t *testing.T) {
		uc := newMapper(t, 0)
		all := uc.All()
		if len(all) != 6 || all[0].Before.Key() != "08:00-09:15" {
			t.Fatalf("unexpected table: %v", all)
		}
		all[0] = model.TimeMapping{}
		if uc.All()[0].Before.Key() != "08:00-09:15" {
			t.Error("All must not expose the internal table")
		}
	})
}

func TestNewMappingUseCaseFailures(t *testing.T) {
	ctx := context.Background()

	if _, err := usecase.NewMappingUseCase(ctx, &MockMappingSource{}, 0, newTestLogger()); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for an empty table, got %v", err)
	}

	dup := append(sampleMappings(t), sampleMappings(t)[0])
	if _, err := usecase.NewMappingUseCase(ctx, &MockMappingSource{Mappings: dup}, 0, newTestLogger()); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for a duplicate key, got %v", err)
	}

	loadErr := errors.New("disk on fire")
	if _, err := usecase.NewMappingUseCase(ctx, &MockMappingSource{Err: loadErr}, 0, newTestLogger()); !errors.Is(err, loadErr) {
		t.Errorf("expected the source error, got %v", err)
	}
}
