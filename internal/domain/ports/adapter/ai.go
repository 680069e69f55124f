package adapter

import "context"

// Image is an uploaded picture handed to a vision model.
type Image struct {
	Data     []byte
	MIMEType string
}

// VisionRequest is a single prompt + image call.
type VisionRequest struct {
	Model        string
	SystemPrompt string
	Prompt       string
	Image        Image
	MaxTokens    int
}

// Usage for a single vision call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// VisionAdapter is the port for hosted vision-language models.
type VisionAdapter interface {
	// Provider names the backend, used for routing, logs and metrics.
	Provider() string

	// Analyze returns the model's raw text answer and usage as reported by the provider.
	Analyze(ctx context.Context, req VisionRequest) (string, Usage, error)

	// CountTokens is a best-effort estimate of prompt tokens for text.
	CountTokens(ctx context.Context, model string, text string) (int, error)
}
