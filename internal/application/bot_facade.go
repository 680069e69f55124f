package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/adapter"
	"ramadan-timetable-bot/internal/usecase"
)

// MaxMessageLen is Telegram's limit for one text message.
const MaxMessageLen = 4096

// BotFacade composes usecases into high-level bot commands.
// Methods return localized strings so the Telegram adapter just forwards them to the chat.
type BotFacade struct {
	MappingUC MappingUseCaseIface
	ConvertUC ConvertUseCaseIface
	StatsUC   StatsUseCaseIface

	admins map[int64]struct{}
}

// NewBotFacade constructs the facade. With no adminIDs every user may read /stats.
func NewBotFacade(mappingUC MappingUseCaseIface, convertUC ConvertUseCaseIface, statsUC StatsUseCaseIface, adminIDs []int64) *BotFacade {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &BotFacade{
		MappingUC: mappingUC,
		ConvertUC: convertUC,
		StatsUC:   statsUC,
		admins:    admins,
	}
}

func (b *BotFacade) IsAdmin(tgID int64) bool {
	if len(b.admins) == 0 {
		return true
	}
	_, ok := b.admins[tgID]
	return ok
}

func (b *BotFacade) HandleStart(tr Translator) string { return tr.T("start_message") }

func (b *BotFacade) HandleHelp(tr Translator) string { return tr.T("help_message") }

// HandleMappings lists the whole table in file order, split into messages
// that fit Telegram's length limit.
func (b *BotFacade) HandleMappings(tr Translator) []string {
	all := b.MappingUC.All()
	if len(all) == 0 {
		return []string{tr.T("mappings_empty")}
	}
	lines := make([]string, 0, len(all)+1)
	lines = append(lines, tr.T("mappings_header", len(all)))
	for _, m := range all {
		lines = append(lines, tr.T("mappings_line", m.Before.Key(), m.During.Key()))
	}
	return SplitMessage(strings.Join(lines, "\n"), MaxMessageLen)
}

// HandleStats renders the aggregate counters for admins.
func (b *BotFacade) HandleStats(ctx context.Context, tr Translator, tgID int64) (string, error) {
	if !b.IsAdmin(tgID) {
		return tr.T("stats_forbidden"), nil
	}
	if b.StatsUC == nil {
		return "", fmt.Errorf("stats usecase not available")
	}
	st, err := b.StatsUC.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("stats snapshot: %w", err)
	}
	return tr.T("stats_message",
		st.Attempts, st.Successes, st.Failures,
		st.SuccessRate(), st.AverageEntries(),
		st.Converted, st.Unmapped,
	), nil
}

// HandleConvert runs the pipeline for one uploaded image.
func (b *BotFacade) HandleConvert(ctx context.Context, img adapter.Image, progress usecase.ProgressFunc) (*usecase.ConvertResult, error) {
	if b.ConvertUC == nil {
		return nil, fmt.Errorf("convert usecase not available")
	}
	return b.ConvertUC.Convert(ctx, img, progress)
}

// ProgressText is the status line shown while stage runs.
func (b *BotFacade) ProgressText(tr Translator, stage usecase.Stage, entries int) string {
	switch stage {
	case usecase.StageExtract:
		return tr.T("progress_extracting")
	case usecase.StageMap:
		return tr.T("progress_mapping", entries)
	case usecase.StageRender:
		return tr.T("progress_rendering")
	default:
		return tr.T("progress_received")
	}
}

// ResultSummary describes a successful conversion: converted classes grouped
// by day, then unmapped classes with their nearest slot, then skipped rows.
func (b *BotFacade) ResultSummary(tr Translator, conv *model.Conversion) []string {
	if conv == nil {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(tr.T("summary_header", len(conv.Converted)))

	fuzzy := false
	for _, day := range model.TimetableDays {
		var dayLines []string
		for _, c := range conv.Converted {
			if c.Entry.Day != day {
				continue
			}
			line := tr.T("summary_line", c.Entry.Course, c.Entry.Slot.Key(), c.Ramadan.Key())
			if c.Match == model.MatchFuzzy {
				line += tr.T("summary_fuzzy_mark")
				fuzzy = true
			}
			dayLines = append(dayLines, line)
		}
		if len(dayLines) == 0 {
			continue
		}
		sb.WriteString("\n" + tr.T("summary_day", dayName(tr, day)))
		for _, l := range dayLines {
			sb.WriteString("\n" + l)
		}
	}
	if fuzzy {
		sb.WriteString("\n\n" + tr.T("summary_fuzzy_note"))
	}
	writeUnmapped(&sb, tr, conv.Unmapped)
	if conv.Skipped > 0 {
		sb.WriteString("\n" + tr.T("summary_skipped", conv.Skipped))
	}
	return SplitMessage(sb.String(), MaxMessageLen)
}

// ErrorMessage maps a pipeline error to the user-facing text. Raw errors are
// never included. When nothing could be converted the unmapped classes are listed.
func (b *BotFacade) ErrorMessage(tr Translator, err error) []string {
	var unconverted *usecase.UnconvertedError
	if errors.As(err, &unconverted) {
		var sb strings.Builder
		sb.WriteString(tr.T("error_not_converted"))
		writeUnmapped(&sb, tr, unconverted.Conversion.Unmapped)
		return SplitMessage(sb.String(), MaxMessageLen)
	}
	return []string{tr.T(ErrorKey(err))}
}

// ErrorKey returns the translation key for err.
func ErrorKey(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "error_rate_limited"
	case errors.Is(err, domain.ErrBusy):
		return "error_busy"
	case errors.Is(err, domain.ErrUnsupportedMedia):
		return "error_unsupported_media"
	case errors.Is(err, domain.ErrNothingConverted), errors.Is(err, domain.ErrMappingNotFound):
		return "error_not_converted"
	case errors.Is(err, domain.ErrExtraction):
		return "error_extraction"
	case errors.Is(err, domain.ErrRender):
		return "error_render"
	case errors.Is(err, context.DeadlineExceeded):
		return "error_extraction"
	default:
		return "error_generic"
	}
}

func writeUnmapped(sb *strings.Builder, tr Translator, unmapped []model.UnmappedEntry) {
	if len(unmapped) == 0 {
		return
	}
	sb.WriteString("\n" + tr.T("summary_unmapped_header", len(unmapped)))
	for _, u := range unmapped {
		line := tr.T("summary_unmapped_line", u.Entry.Course, dayName(tr, u.Entry.Day), u.Entry.Slot.Key())
		if u.Suggestion != nil {
			line += tr.T("summary_suggestion", u.Suggestion.Before.Key(), u.Suggestion.During.Key())
		}
		sb.WriteString("\n" + line)
	}
}

func dayName(tr Translator, d time.Weekday) string {
	return tr.T(fmt.Sprintf("day_%d", int(d)))
}

// SplitMessage cuts text into chunks of at most limit runes, breaking at line
// boundaries. A single line longer than limit is hard-split.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var (
		out []string
		cur strings.Builder
		n   int
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, line := range strings.Split(text, "\n") {
		ln := utf8.RuneCountInString(line)
		for ln > limit {
			flush()
			r := []rune(line)
			out = append(out, string(r[:limit]))
			line = string(r[limit:])
			ln -= limit
		}
		sep := 0
		if n > 0 {
			sep = 1
		}
		if n+sep+ln > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
		n += sep + ln
	}
	flush()
	return out
}
