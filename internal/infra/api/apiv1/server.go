package apiv1

import (
	"encoding/json"
	"net/http"

	"ramadan-timetable-bot/internal/domain/model"
	"ramadan-timetable-bot/internal/infra/logging"
	"ramadan-timetable-bot/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Mapping is the JSON form of one slot mapping.
type Mapping struct {
	BeforeRamadan string `json:"before_ramadan"`
	DuringRamadan string `json:"during_ramadan"`
}

// Stats is the JSON form of the aggregate counters.
type Stats struct {
	Attempts         int64   `json:"attempts"`
	Successes        int64   `json:"successes"`
	Failures         int64   `json:"failures"`
	SuccessRate      float64 `json:"success_rate"`
	EntriesExtracted int64   `json:"entries_extracted"`
	AverageEntries   float64 `json:"average_entries"`
	Converted        int64   `json:"converted"`
	Unmapped         int64   `json:"unmapped"`
}

type Server struct {
	mappingUC usecase.MappingUseCase
	statsUC   usecase.StatsUseCase
	log       *zerolog.Logger
}

func NewServer(mappingUC usecase.MappingUseCase, statsUC usecase.StatsUseCase, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Server{mappingUC: mappingUC, statsUC: statsUC, log: logger}
}

// RegisterAPIV1 mounts the read-only endpoints on r.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/mappings", s.listMappings)
		r.Get("/stats", s.getStats)
	})
}

func (s *Server) listMappings(w http.ResponseWriter, r *http.Request) {
	all := s.mappingUC.All()
	items := make([]Mapping, 0, len(all))
	for _, m := range all {
		items = append(items, toMapping(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(items), "items": items})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.statsUC.Snapshot(r.Context())
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("stats snapshot failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "stats unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, Stats{
		Attempts:         st.Attempts,
		Successes:        st.Successes,
		Failures:         st.Failures,
		SuccessRate:      st.SuccessRate(),
		EntriesExtracted: st.EntriesExtracted,
		AverageEntries:   st.AverageEntries(),
		Converted:        st.Converted,
		Unmapped:         st.Unmapped,
	})
}

func toMapping(m model.TimeMapping) Mapping {
	return Mapping{BeforeRamadan: m.Before.Key(), DuringRamadan: m.During.Key()}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
