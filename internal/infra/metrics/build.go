package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(buildInfo, mappingsLoaded)
}

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "A constant metric with labels for version and commit hash.",
		},
		[]string{"version", "commit"},
	)

	mappingsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "time_mappings_loaded",
			Help: "Number of entries in the loaded time mapping table.",
		},
	)
)

func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit).Set(1)
}

func SetMappingsLoaded(n int) {
	mappingsLoaded.Set(float64(n))
}
