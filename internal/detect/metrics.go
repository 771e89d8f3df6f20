package detect

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for the scoring pipeline.
var (
	batchesScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsegrid_batches_scored_total",
			Help: "Total number of reading batches scored.",
		},
	)
	readingsScoredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsegrid_readings_scored_total",
			Help: "Total number of sensor readings scored.",
		},
	)
	anomaliesDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsegrid_anomalies_detected_total",
			Help: "Total number of anomalous metric observations.",
		},
		[]string{"metric"},
	)
)

func init() {
	prometheus.MustRegister(batchesScoredTotal)
	prometheus.MustRegister(readingsScoredTotal)
	prometheus.MustRegister(anomaliesDetectedTotal)
}
