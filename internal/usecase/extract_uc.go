package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/adapter"
	"ramadan-timetable-bot/internal/domain/ports/repository"
	"ramadan-timetable-bot/internal/infra/logging"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ExtractUseCase = (*extractUC)(nil)

// ExtractUseCase reads timetable entries out of an image with a vision model.
type ExtractUseCase interface {
	// Extract returns at least one entry or an error wrapping domain.ErrExtraction
	// (domain.ErrUnsupportedMedia for images too large to decode).
	Extract(ctx context.Context, img adapter.Image) (*Extraction, error)
}

// Extraction is the result of one successful extraction.
type Extraction struct {
	Entries  []model.TimetableEntry
	Skipped  int
	Provider string
	Model    string
	Usage    adapter.Usage
	Duration time.Duration
}

type ExtractOptions struct {
	Model            string
	MaxEntries       int
	MaxTokens        int
	SaveFailedImages bool
}

type extractUC struct {
	vision   adapter.VisionAdapter
	preparer adapter.ImagePreparer
	logs     repository.ExtractionLogRepository // optional
	opts     ExtractOptions

	log *zerolog.Logger
}

// NewExtractUseCase wires the extractor. preparer and logs may be nil.
func NewExtractUseCase(vision adapter.VisionAdapter, preparer adapter.ImagePreparer, logs repository.ExtractionLogRepository, opts ExtractOptions, logger *zerolog.Logger) *extractUC {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 50
	}
	return &extractUC{vision: vision, preparer: preparer, logs: logs, opts: opts, log: logger}
}

func (u *extractUC) Extract(ctx context.Context, img adapter.Image) (*Extraction, error) {
	defer logging.TraceDuration(u.log, "ExtractUC.Extract")()
	log := logging.With(ctx, u.log)

	if len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrExtraction)
	}
	original := img
	if u.preparer != nil {
		prepared, err := u.preparer.Prepare(img)
		if errors.Is(err, domain.ErrUnsupportedMedia) {
			return nil, err
		}
		if err != nil {
			log.Warn().Err(err).Msg("image preprocessing failed, sending original")
		} else {
			img = prepared
		}
	}

	rec := &repository.ExtractionRecord{
		ID:         ulid.Make().String(),
		TraceID:    logging.TraceID(ctx),
		UserID:     logging.TgID(ctx),
		Timestamp:  time.Now().UTC(),
		Provider:   u.vision.Provider(),
		Model:      u.opts.Model,
		ImageBytes: len(img.Data),
	}

	start := time.Now()
	text, usage, err := u.vision.Analyze(ctx, adapter.VisionRequest{
		Model:        u.opts.Model,
		SystemPrompt: extractionSystemPrompt,
		Prompt:       extractionPrompt,
		Image:        img,
		MaxTokens:    u.opts.MaxTokens,
	})
	elapsed := time.Since(start)
	rec.DurationMS = elapsed.Milliseconds()
	rec.RawResponse = text

	if usage.PromptTokens == 0 {
		if n, cerr := u.vision.CountTokens(ctx, u.opts.Model, extractionSystemPrompt+"\n"+extractionPrompt); cerr == nil {
			usage.PromptTokens = n
		}
	}
	rec.PromptTokens, rec.OutputTokens = usage.PromptTokens, usage.CompletionTokens

	if err != nil {
		err = fmt.Errorf("%w: vision call: %w", domain.ErrExtraction, err)
		u.record(ctx, rec, original.Data, err)
		return nil, err
	}

	entries, skipped, err := u.parse(text)
	rec.SkippedRows = skipped
	if err != nil {
		u.record(ctx, rec, original.Data, err)
		return nil, err
	}
	rec.EntryCount = len(entries)
	rec.Success = true
	u.record(ctx, rec, nil, nil)

	log.Info().
		Str("provider", rec.Provider).
		Int("entries", len(entries)).
		Int("skipped", skipped).
		Dur("duration", elapsed).
		Msg("timetable extracted")

	return &Extraction{
		Entries:  entries,
		Skipped:  skipped,
		Provider: rec.Provider,
		Model:    u.opts.Model,
		Usage:    usage,
		Duration: elapsed,
	}, nil
}

func (u *extractUC) parse(text string) ([]model.TimetableEntry, int, error) {
	rows, err := parseModelOutput(text)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrExtraction, err)
	}
	entries, skipped := validateRows(rows)
	if len(entries) == 0 {
		return nil, skipped, fmt.Errorf("%w: no valid classes in model output (%d rows dropped)", domain.ErrExtraction, skipped)
	}
	if len(entries) > u.opts.MaxEntries {
		return nil, skipped, fmt.Errorf("%w: %d classes exceeds the limit of %d", domain.ErrExtraction, len(entries), u.opts.MaxEntries)
	}
	return entries, skipped, nil
}

func (u *extractUC) record(ctx context.Context, rec *repository.ExtractionRecord, image []byte, failure error) {
	log := logging.With(ctx, u.log)
	if failure != nil {
		rec.Error = failure.Error()
		log.Warn().Err(failure).Str("record", rec.ID).Msg("timetable extraction failed")
	}
	if u.logs == nil {
		return
	}
	var keep []byte
	if failure != nil && u.opts.SaveFailedImages {
		keep = image
	}
	// written even when the request was cancelled
	if err := u.logs.Save(context.WithoutCancel(ctx), rec, keep); err != nil {
		log.Error().Err(err).Str("record", rec.ID).Msg("failed to write extraction log")
	}
}
