// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"strings"

	"ramadan-timetable-bot/internal/domain/ports/adapter"
)

var _ adapter.VisionAdapter = (*MultiAIAdapter)(nil)

var errNoProvider = errors.New("no vision provider configured")

// MultiAIAdapter routes each call to a provider by model name.
type MultiAIAdapter struct {
	defaultProvider string // e.g., "openai" or "gemini"
	defaultModel    string
	byProvider      map[string]adapter.VisionAdapter
	modelToProvider map[string]string // model -> provider ("openai" | "gemini")
}

func NewMultiAIAdapter(
	defaultProvider, defaultModel string,
	byProvider map[string]adapter.VisionAdapter,
	modelToProvider map[string]string,
) *MultiAIAdapter {
	return &MultiAIAdapter{
		defaultProvider: strings.ToLower(defaultProvider),
		defaultModel:    defaultModel,
		byProvider:      byProvider,
		modelToProvider: modelToProvider,
	}
}

// ProviderFor reports which provider name a model routes to.
func ProviderFor(model, defaultProvider string) string {
	l := strings.ToLower(model)
	switch {
	case strings.HasPrefix(l, "gemini"):
		return "gemini"
	case strings.HasPrefix(l, "gpt"), strings.HasPrefix(l, "o1"), strings.HasPrefix(l, "o3"), strings.HasPrefix(l, "o4"):
		return "openai"
	case l == "noop":
		return "noop"
	default:
		return strings.ToLower(defaultProvider)
	}
}

func (m *MultiAIAdapter) resolveProvider(model string) string {
	if p := m.modelToProvider[model]; p != "" {
		return strings.ToLower(p)
	}
	return ProviderFor(model, m.defaultProvider)
}

func (m *MultiAIAdapter) pick(model string) adapter.VisionAdapter {
	if a := m.byProvider[m.resolveProvider(model)]; a != nil {
		return a
	}
	if a := m.byProvider[m.defaultProvider]; a != nil {
		return a
	}
	return nil
}

// Provider names the provider the default model routes to.
func (m *MultiAIAdapter) Provider() string {
	if a := m.pick(m.defaultModel); a != nil {
		return a.Provider()
	}
	return "none"
}

func (m *MultiAIAdapter) Analyze(ctx context.Context, req adapter.VisionRequest) (string, adapter.Usage, error) {
	if req.Model == "" {
		req.Model = m.defaultModel
	}
	a := m.pick(req.Model)
	if a == nil {
		return "", adapter.Usage{}, errNoProvider
	}
	return a.Analyze(ctx, req)
}

func (m *MultiAIAdapter) CountTokens(ctx context.Context, model, text string) (int, error) {
	if model == "" {
		model = m.defaultModel
	}
	a := m.pick(model)
	if a == nil {
		return 0, errNoProvider
	}
	return a.CountTokens(ctx, model, text)
}
