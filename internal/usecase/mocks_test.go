//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/adapter"
	"ramadan-timetable-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// --- Mock Vision Adapter

type MockVision struct {
	AnalyzeFunc     func(ctx context.Context, req adapter.VisionRequest) (string, adapter.Usage, error)
	CountTokensFunc func(ctx context.Context, model, text string) (int, error)
	Requests        []adapter.VisionRequest
}

func (m *MockVision) Provider() string { return "mock" }

func (m *MockVision) Analyze(ctx context.Context, req adapter.VisionRequest) (string, adapter.Usage, error) {
	m.Requests = append(m.Requests, req)
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return "[]", adapter.Usage{}, nil
}

func (m *MockVision) CountTokens(ctx context.Context, model, text string) (int, error) {
	if m.CountTokensFunc != nil {
		return m.CountTokensFunc(ctx, model, text)
	}
	return 0, nil
}

// --- Mock Image Preparer

type MockPreparer struct {
	PrepareFunc func(img adapter.Image) (adapter.Image, error)
}

func (m *MockPreparer) Prepare(img adapter.Image) (adapter.Image, error) {
	return m.PrepareFunc(img)
}

// --- Mock Mapping Source

type MockMappingSource struct {
	Mappings []model.TimeMapping
	Err      error
}

func (m *MockMappingSource) Load(context.Context) ([]model.TimeMapping, error) {
	return m.Mappings, m.Err
}

// --- Mock Stats Repository

type MockStatsRepo struct {
	mu     sync.Mutex
	Deltas []repository.StatsDelta
	Stats  model.Stats
	GetErr error
}

func (m *MockStatsRepo) Record(_ context.Context, d repository.StatsDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deltas = append(m.Deltas, d)
	return nil
}

func (m *MockStatsRepo) Get(context.Context) (model.Stats, error) {
	return m.Stats, m.GetErr
}

// --- Mock Extraction Log

type MockExtractionLog struct {
	Records []*repository.ExtractionRecord
	Images  [][]byte
}

func (m *MockExtractionLog) Save(_ context.Context, rec *repository.ExtractionRecord, image []byte) error {
	m.Records = append(m.Records, rec)
	m.Images = append(m.Images, image)
	return nil
}

func (m *MockExtractionLog) Cleanup(context.Context, time.Time) (int, error) { return 0, nil }

// --- Mock Renderer

type MockRenderer struct {
	RenderFunc func(ctx context.Context, entries []model.ConvertedEntry) ([]byte, error)
	Calls      int
}

func (m *MockRenderer) Render(ctx context.Context, entries []model.ConvertedEntry) ([]byte, error) {
	m.Calls++
	if m.RenderFunc != nil {
		return m.RenderFunc(ctx, entries)
	}
	return []byte("png"), nil
}

// --- Mock Calendar

type MockCalendar struct {
	Err error
}

func (m *MockCalendar) Export(entries []model.ConvertedEntry, _ time.Time) ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return []byte("BEGIN:VCALENDAR"), nil
}

// --- helpers

func mustRange(t *testing.T, s string) model.TimeRange {
	t.Helper()
	r, err := model.ParseTimeRange(s)
	if err != nil {
		t.Fatalf("bad range %q: %v", s, err)
	}
	return r
}

func sampleMappings(t *testing.T) []model.TimeMapping {
	t.Helper()
	pairs := [][2]string{
		{"08:00-09:15", "10:00-10:50"},
		{"09:45-11:00", "11:00-11:50"},
		{"09:45-11:25", "11:00-12:05"},
		{"11:30-13:10", "12:10-13:20"},
		{"11:30-12:45", "12:10-13:00"},
		{"13:15-14:55", "13:30-14:40"},
	}
	out := make([]model.TimeMapping, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, model.TimeMapping{Before: mustRange(t, p[0]), During: mustRange(t, p[1])})
	}
	return out
}
