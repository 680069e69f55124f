package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		pipelineStageSeconds,
		pipelineFailuresTotal,
		extractedEntries,
		mappingResultsTotal,
		extractionLogFilesRemoved,
	)
}

var (
	pipelineStageSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of each conversion stage.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"stage"}, // extract | map | render
	)

	pipelineFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_failures_total",
			Help: "Conversion failures by stage.",
		},
		[]string{"stage"},
	)

	extractedEntries = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extracted_entries",
			Help:    "Number of valid timetable entries per extraction.",
			Buckets: []float64{1, 3, 5, 10, 15, 20, 30, 50},
		},
	)

	mappingResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mapping_results_total",
			Help: "Time mapper outcomes per entry.",
		},
		[]string{"result"}, // exact | fuzzy | unmapped
	)

	extractionLogFilesRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "extraction_log_files_removed_total",
			Help: "Extraction log files removed by the retention worker.",
		},
	)
)

func ObserveStage(stage string, d time.Duration) {
	pipelineStageSeconds.WithLabelValues(norm(stage)).Observe(d.Seconds())
}

func IncStageFailure(stage string) {
	pipelineFailuresTotal.WithLabelValues(norm(stage)).Inc()
}

func ObserveExtractedEntries(n int) {
	extractedEntries.Observe(float64(n))
}

func IncMappingResult(result string) {
	mappingResultsTotal.WithLabelValues(norm(result)).Inc()
}

func AddExtractionLogFilesRemoved(n int) {
	extractionLogFilesRemoved.Add(float64(n))
}
