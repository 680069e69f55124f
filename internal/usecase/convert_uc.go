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

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ConvertUseCase = (*convertUC)(nil)

type Stage string

const (
	StageExtract Stage = "extract"
	StageMap     Stage = "map"
	StageRender  Stage = "render"
)

// ProgressFunc is called when a stage starts. entries is the number of
// extracted classes once known, 0 before.
type ProgressFunc func(stage Stage, entries int)

// ConvertUseCase runs extract -> map -> render for one uploaded image.
type ConvertUseCase interface {
	Convert(ctx context.Context, img adapter.Image, progress ProgressFunc) (*ConvertResult, error)
}

type ConvertResult struct {
	Extraction *Extraction
	Conversion *model.Conversion
	Image      []byte // PNG
	Calendar   []byte // iCalendar, nil when disabled or failed
	Timings    map[Stage]time.Duration
}

// UnconvertedError is returned when no extracted class could be mapped.
type UnconvertedError struct {
	Conversion *model.Conversion
}

func (e *UnconvertedError) Error() string {
	return fmt.Sprintf("%s: %d classes without a mapping", domain.ErrNothingConverted, len(e.Conversion.Unmapped))
}

func (e *UnconvertedError) Unwrap() []error {
	return []error{domain.ErrNothingConverted, domain.ErrMappingNotFound}
}

type convertUC struct {
	extractor ExtractUseCase
	mapper    MappingUseCase
	renderer  adapter.TimetableRenderer
	calendar  adapter.CalendarExporter // optional
	stats     repository.StatsRepository

	log *zerolog.Logger
}

func NewConvertUseCase(extractor ExtractUseCase, mapper MappingUseCase, renderer adapter.TimetableRenderer, calendar adapter.CalendarExporter, stats repository.StatsRepository, logger *zerolog.Logger) *convertUC {
	return &convertUC{extractor: extractor, mapper: mapper, renderer: renderer, calendar: calendar, stats: stats, log: logger}
}

func (c *convertUC) Convert(ctx context.Context, img adapter.Image, progress ProgressFunc) (*ConvertResult, error) {
	defer logging.TraceDuration(c.log, "ConvertUC.Convert")()
	if progress == nil {
		progress = func(Stage, int) {}
	}
	res := &ConvertResult{Timings: make(map[Stage]time.Duration, 3)}

	progress(StageExtract, 0)
	t0 := time.Now()
	ext, err := c.extractor.Extract(ctx, img)
	res.Timings[StageExtract] = time.Since(t0)
	if err != nil {
		c.record(ctx, repository.StatsDelta{})
		return res, err
	}
	res.Extraction = ext

	progress(StageMap, len(ext.Entries))
	t0 = time.Now()
	conv := c.mapper.MapAll(ext.Entries)
	conv.Skipped = ext.Skipped
	res.Conversion = conv
	res.Timings[StageMap] = time.Since(t0)

	delta := repository.StatsDelta{
		Extracted: len(ext.Entries),
		Converted: len(conv.Converted),
		Unmapped:  len(conv.Unmapped),
	}
	if len(conv.Converted) == 0 {
		c.record(ctx, delta)
		return res, &UnconvertedError{Conversion: conv}
	}

	progress(StageRender, len(ext.Entries))
	t0 = time.Now()
	png, err := c.renderer.Render(ctx, conv.Converted)
	res.Timings[StageRender] = time.Since(t0)
	if err != nil {
		c.record(ctx, delta)
		if !errors.Is(err, domain.ErrRender) {
			err = fmt.Errorf("%w: %w", domain.ErrRender, err)
		}
		return res, err
	}
	res.Image = png

	if c.calendar != nil {
		ics, err := c.calendar.Export(conv.Converted, time.Now())
		if err != nil {
			logging.With(ctx, c.log).Warn().Err(err).Msg("calendar export failed")
		} else {
			res.Calendar = ics
		}
	}

	delta.Success = true
	c.record(ctx, delta)
	return res, nil
}

func (c *convertUC) record(ctx context.Context, d repository.StatsDelta) {
	if c.stats == nil {
		return
	}
	if err := c.stats.Record(context.WithoutCancel(ctx), d); err != nil {
		logging.With(ctx, c.log).Error().Err(err).Msg("failed to record conversion stats")
	}
}
