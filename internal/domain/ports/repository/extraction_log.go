package repository

import (
	"context"
	"time"
)

// ExtractionRecord describes one extraction attempt.
type ExtractionRecord struct {
	ID           string    `json:"id"`
	TraceID      string    `json:"trace_id,omitempty"`
	UserID       int64     `json:"user_id"`
	Timestamp    time.Time `json:"timestamp"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	ImageBytes   int       `json:"image_bytes"`
	DurationMS   int64     `json:"duration_ms"`
	Success      bool      `json:"success"`
	EntryCount   int       `json:"entry_count"`
	SkippedRows  int       `json:"skipped_rows"`
	PromptTokens int       `json:"prompt_tokens"`
	OutputTokens int       `json:"output_tokens"`
	RawResponse  string    `json:"raw_response,omitempty"`
	Error        string    `json:"error,omitempty"`
	ImageFile    string    `json:"image_file,omitempty"`
}

// ExtractionLogRepository persists extraction attempts for offline debugging.
type ExtractionLogRepository interface {
	// Save stores rec. When image is non-nil it is kept next to the record.
	Save(ctx context.Context, rec *ExtractionRecord, image []byte) error
	// Cleanup removes records and images older than cutoff and returns how many files were removed.
	Cleanup(ctx context.Context, cutoff time.Time) (int, error)
}
