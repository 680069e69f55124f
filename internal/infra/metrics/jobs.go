package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(conversionJobsTotal, conversionQueueDepth) }

var (
	conversionJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversion_jobs_total",
			Help: "Total number of photo conversion jobs, labeled by status.",
		},
		[]string{"status"}, // 'completed', 'failed', 'rejected'
	)

	conversionQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversion_queue_depth",
			Help: "Photo conversion jobs waiting for a worker.",
		},
	)
)

func IncConversionJob(status string) {
	conversionJobsTotal.WithLabelValues(norm(status)).Inc()
}

func SetQueueDepth(n int) {
	conversionQueueDepth.Set(float64(n))
}
