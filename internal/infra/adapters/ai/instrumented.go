package ai

import (
	"context"
	"time"

	"ramadan-timetable-bot/internal/domain/ports/adapter"
	"ramadan-timetable-bot/internal/infra/metrics"
)

// Compile-time check
var _ adapter.VisionAdapter = (*instrumentedAI)(nil)

type instrumentedAI struct {
	inner adapter.VisionAdapter
}

// NewInstrumentedAI records token usage and latency of every Analyze call.
func NewInstrumentedAI(inner adapter.VisionAdapter) adapter.VisionAdapter {
	return &instrumentedAI{inner: inner}
}

func (i *instrumentedAI) Provider() string { return i.inner.Provider() }

func (i *instrumentedAI) Analyze(ctx context.Context, req adapter.VisionRequest) (string, adapter.Usage, error) {
	start := time.Now()
	out, usage, err := i.inner.Analyze(ctx, req)
	metrics.ObserveVisionUsage(
		ProviderFor(req.Model, i.inner.Provider()), req.Model,
		usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens,
		time.Since(start).Milliseconds(), err == nil,
	)
	return out, usage, err
}

func (i *instrumentedAI) CountTokens(ctx context.Context, model, text string) (int, error) {
	return i.inner.CountTokens(ctx, model, text)
}
