package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"ramadan-timetable-bot/internal/domain/ports/adapter"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.VisionAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter calls Chat Completions with an inline image. A custom base URL
// points it at any OpenAI-compatible gateway.
type OpenAIAdapter struct {
	client openai.Client
	model  string
	tokens *TokenCounter
}

type OpenAIOptions struct {
	APIKey     string
	BaseURL    string // empty: api.openai.com
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

func NewOpenAIAdapter(o OpenAIOptions, tokens *TokenCounter) (*OpenAIAdapter, error) {
	if o.APIKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if o.Model == "" {
		o.Model = "gpt-4o"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		option.WithMaxRetries(o.MaxRetries),
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(o.BaseURL, "/")+"/"))
	}
	if o.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(o.Timeout))
	}
	return &OpenAIAdapter{
		client: openai.NewClient(opts...),
		model:  o.Model,
		tokens: tokens,
	}, nil
}

func (o *OpenAIAdapter) Provider() string { return "openai" }

func (o *OpenAIAdapter) Analyze(ctx context.Context, req adapter.VisionRequest) (string, adapter.Usage, error) {
	model := modelOrDefault(req.Model, o.model)

	mime := req.Image.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	dataURL := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(req.Image.Data)

	var messages []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(req.Prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL:    dataURL,
			Detail: "high",
		}),
	}))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(0),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", adapter.Usage{}, err
	}

	u := adapter.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, u, nil
		}
	}
	return "", u, errors.New("no choice content")
}

func (o *OpenAIAdapter) CountTokens(_ context.Context, model, text string) (int, error) {
	if o.tokens == nil {
		return 0, errors.New("token counter unavailable")
	}
	return o.tokens.Count(modelOrDefault(model, o.model), text)
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
