package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ MappingUseCase = (*mappingUC)(nil)

// MappingUseCase converts regular class slots to Ramadan slots using the static table.
type MappingUseCase interface {
	// Map looks up slot. A miss returns a *MappingNotFoundError.
	Map(slot model.TimeRange) (model.TimeRange, model.MatchKind, error)
	// MapAll maps every entry; misses are collected in Conversion.Unmapped.
	MapAll(entries []model.TimetableEntry) *model.Conversion
	// All returns the table in file order.
	All() []model.TimeMapping
}

// MappingNotFoundError is returned for slots that are not in the table.
type MappingNotFoundError struct {
	Slot       model.TimeRange
	Suggestion *model.TimeMapping
}

func (e *MappingNotFoundError) Error() string {
	if e.Suggestion != nil {
		return fmt.Sprintf("%s: %s (nearest %s)", domain.ErrMappingNotFound, e.Slot, e.Suggestion.Before)
	}
	return fmt.Sprintf("%s: %s", domain.ErrMappingNotFound, e.Slot)
}

func (e *MappingNotFoundError) Unwrap() error { return domain.ErrMappingNotFound }

type mappingUC struct {
	table     []model.TimeMapping
	byKey     map[string]int
	tolerance model.Clock

	log *zerolog.Logger
}

// NewMappingUseCase loads the table once. tolerance 0 disables fuzzy matching.
func NewMappingUseCase(ctx context.Context, src repository.MappingSource, tolerance time.Duration, logger *zerolog.Logger) (*mappingUC, error) {
	table, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty mapping table", domain.ErrConfiguration)
	}

	byKey := make(map[string]int, len(table))
	for i, m := range table {
		k := m.Before.Key()
		if _, dup := byKey[k]; dup {
			return nil, fmt.Errorf("%w: duplicate mapping for %s", domain.ErrConfiguration, k)
		}
		byKey[k] = i
	}

	logger.Info().Int("mappings", len(table)).Dur("fuzzy_tolerance", tolerance).Msg("time mapping table loaded")
	return &mappingUC{
		table:     table,
		byKey:     byKey,
		tolerance: model.Clock(tolerance / time.Minute),
		log:       logger,
	}, nil
}

func (m *mappingUC) All() []model.TimeMapping {
	out := make([]model.TimeMapping, len(m.table))
	copy(out, m.table)
	return out
}

func (m *mappingUC) Map(slot model.TimeRange) (model.TimeRange, model.MatchKind, error) {
	if i, ok := m.byKey[slot.Key()]; ok {
		return m.table[i].During, model.MatchExact, nil
	}
	if i := m.fuzzy(slot); i >= 0 {
		return m.table[i].During, model.MatchFuzzy, nil
	}
	return model.TimeRange{}, "", &MappingNotFoundError{Slot: slot, Suggestion: m.nearest(slot)}
}

func (m *mappingUC) MapAll(entries []model.TimetableEntry) *model.Conversion {
	conv := &model.Conversion{}
	for _, e := range entries {
		during, kind, err := m.Map(e.Slot)
		if err != nil {
			u := model.UnmappedEntry{Entry: e}
			var nf *MappingNotFoundError
			if errors.As(err, &nf) {
				u.Suggestion = nf.Suggestion
			}
			conv.Unmapped = append(conv.Unmapped, u)
			m.log.Debug().Str("course", e.Course).Str("slot", e.Slot.Key()).Msg("slot not in mapping table")
			continue
		}
		conv.Converted = append(conv.Converted, model.ConvertedEntry{Entry: e, Ramadan: during, Match: kind})
	}
	model.SortConverted(conv.Converted)
	return conv
}

// fuzzy returns the index of the mapping whose both ends lie within tolerance,
// smallest total distance first, table order on ties. -1 if none.
func (m *mappingUC) fuzzy(slot model.TimeRange) int {
	if m.tolerance <= 0 {
		return -1
	}
	best, bestDist := -1, model.Clock(0)
	for i, tm := range m.table {
		ds, de := absClock(tm.Before.Start-slot.Start), absClock(tm.Before.End-slot.End)
		if ds > m.tolerance || de > m.tolerance {
			continue
		}
		if best < 0 || ds+de < bestDist {
			best, bestDist = i, ds+de
		}
	}
	return best
}

// nearest orders by start distance, then end distance, then table order.
func (m *mappingUC) nearest(slot model.TimeRange) *model.TimeMapping {
	best := -1
	var bestStart, bestEnd model.Clock
	for i, tm := range m.table {
		ds, de := absClock(tm.Before.Start-slot.Start), absClock(tm.Before.End-slot.End)
		if best < 0 || ds < bestStart || (ds == bestStart && de < bestEnd) {
			best, bestStart, bestEnd = i, ds, de
		}
	}
	if best < 0 {
		return nil
	}
	s := m.table[best]
	return &s
}

func absClock(c model.Clock) model.Clock {
	if c < 0 {
		return -c
	}
	return c
}
