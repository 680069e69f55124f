package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"ramadan-timetable-bot/internal/domain"
	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.MappingSource = (*JSONFileSource)(nil)

type fileFormat struct {
	Mappings []struct {
		BeforeRamadan string `json:"before_ramadan"`
		DuringRamadan string `json:"during_ramadan"`
	} `json:"mappings"`
}

// JSONFileSource reads the slot table from a time_mapping.json file.
type JSONFileSource struct {
	path string
}

func NewJSONFileSource(path string) *JSONFileSource {
	return &JSONFileSource{path: path}
}

// Load parses the file. An empty table, a malformed row or a duplicate
// regular slot is a configuration error.
func (s *JSONFileSource) Load(_ context.Context) ([]model.TimeMapping, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read mapping file: %v", domain.ErrConfiguration, err)
	}
	return Parse(b)
}

// Parse decodes the mapping document.
func Parse(b []byte) ([]model.TimeMapping, error) {
	var doc fileFormat
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse mapping file: %v", domain.ErrConfiguration, err)
	}
	if len(doc.Mappings) == 0 {
		return nil, fmt.Errorf("%w: mapping file has no mappings", domain.ErrConfiguration)
	}

	out := make([]model.TimeMapping, 0, len(doc.Mappings))
	seen := make(map[string]int, len(doc.Mappings))
	for i, row := range doc.Mappings {
		before, err := model.ParseTimeRange(row.BeforeRamadan)
		if err != nil {
			return nil, fmt.Errorf("%w: mapping #%d before_ramadan: %v", domain.ErrConfiguration, i+1, err)
		}
		during, err := model.ParseTimeRange(row.DuringRamadan)
		if err != nil {
			return nil, fmt.Errorf("%w: mapping #%d during_ramadan: %v", domain.ErrConfiguration, i+1, err)
		}
		if prev, dup := seen[before.Key()]; dup {
			return nil, fmt.Errorf("%w: mapping #%d duplicates #%d (%s)", domain.ErrConfiguration, i+1, prev, before.Key())
		}
		seen[before.Key()] = i + 1
		out = append(out, model.TimeMapping{Before: before, During: during})
	}
	return out, nil
}
