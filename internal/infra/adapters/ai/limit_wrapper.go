package ai

import (
	"context"

	"ramadan-timetable-bot/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.VisionAdapter = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.VisionAdapter
	sem   chan struct{}
}

// NewLimitedAI caps concurrent Analyze calls. Waiting callers give up when ctx is done.
func NewLimitedAI(inner adapter.VisionAdapter, maxConcurrent int) adapter.VisionAdapter {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Provider() string { return l.inner.Provider() }

func (l *limitedAI) Analyze(ctx context.Context, req adapter.VisionRequest) (string, adapter.Usage, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Analyze(ctx, req)
}

func (l *limitedAI) CountTokens(ctx context.Context, model, text string) (int, error) {
	return l.inner.CountTokens(ctx, model, text)
}
