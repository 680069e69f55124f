//go:build !integration

package apiv1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	apiv1 "ramadan-timetable-bot/internal/infra/api/apiv1"

	"ramadan-timetable-bot/internal/domain/model"
)

//
// ---------------- use case fakes ----------------
//

type fakeMapping struct {
	table []model.TimeMapping
}

func (f *fakeMapping) Map(slot model.TimeRange) (model.TimeRange, model.MatchKind, error) {
	return model.TimeRange{}, "", errors.New("not used")
}

func (f *fakeMapping) MapAll(entries []model.TimetableEntry) *model.Conversion {
	return &model.Conversion{}
}

func (f *fakeMapping) All() []model.TimeMapping { return f.table }

type fakeStats struct {
	stats model.Stats
	err   error
}

func (f *fakeStats) Snapshot(ctx context.Context) (model.Stats, error) { return f.stats, f.err }

func mustRange(t *testing.T, s string) model.TimeRange {
	t.Helper()
	r, err := model.ParseTimeRange(s)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func newRouter(m *fakeMapping, s *fakeStats) *chi.Mux {
	r := chi.NewRouter()
	apiv1.RegisterAPIV1(r, apiv1.NewServer(m, s, nil))
	return r
}

func TestMappings_List(t *testing.T) {
	// --- Arrange ---
	m := &fakeMapping{table: []model.TimeMapping{
		{Before: mustRange(t, "08:00-09:15"), During: mustRange(t, "10:00-10:50")},
		{Before: mustRange(t, "09:30-10:45"), During: mustRange(t, "11:00-11:50")},
	}}
	r := newRouter(m, &fakeStats{})

	// --- Act ---
	req := httptest.NewRequest(http.MethodGet, "/api/v1/mappings", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// --- Assert ---
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Count int             `json:"count"`
		Items []apiv1.Mapping `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body.Count != 2 || len(body.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", body)
	}
	if body.Items[0].BeforeRamadan != "08:00-09:15" || body.Items[0].DuringRamadan != "10:00-10:50" {
		t.Errorf("unexpected first item %+v", body.Items[0])
	}
	if body.Items[1].BeforeRamadan != "09:30-10:45" {
		t.Errorf("table order not preserved: %+v", body.Items)
	}
}

func TestStats_Get(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s := &fakeStats{stats: model.Stats{Attempts: 4, Successes: 3, Failures: 1, EntriesExtracted: 12, Converted: 10, Unmapped: 2}}
		r := newRouter(&fakeMapping{}, s)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var got apiv1.Stats
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("bad json: %v", err)
		}
		if got.Attempts != 4 || got.SuccessRate != 75 || got.Converted != 10 {
			t.Errorf("unexpected stats %+v", got)
		}
	})

	t.Run("repository error", func(t *testing.T) {
		r := newRouter(&fakeMapping{}, &fakeStats{err: errors.New("redis down")})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestUnknownRoute(t *testing.T) {
	r := newRouter(&fakeMapping{}, &fakeStats{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/mappings", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
