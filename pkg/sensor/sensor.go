// Package sensor provides the public SDK types for PulseGrid sensor scoring.
package sensor

import "time"

// Metric names scored by the detector, in reporting order.
const (
	MetricTemperature = "temperature"
	MetricVibration   = "vibration"
)

// Reading is a single sensor observation submitted for scoring.
// There is no uniqueness constraint on SensorID within a batch.
type Reading struct {
	SensorID    string  `json:"sensor_id"`
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
}

// MetricScores holds the Modified Z-Score per metric, rounded to four
// decimal places for presentation.
type MetricScores struct {
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
}

// ScoreResult is the per-reading scoring outcome. The input fields are
// echoed unchanged. AnomalousMetrics lists the metrics that exceeded the
// threshold, in fixed order: temperature, then vibration.
type ScoreResult struct {
	SensorID         string       `json:"sensor_id"`
	Temperature      float64      `json:"temperature"`
	Vibration        float64      `json:"vibration"`
	IsAnomaly        bool         `json:"is_anomaly"`
	AnomalyScores    MetricScores `json:"anomaly_scores"`
	AnomalousMetrics []string     `json:"anomalous_metrics"`
}

// BatchSummary describes a scored batch. It is published on the event bus
// and streamed to websocket subscribers.
type BatchSummary struct {
	BatchID           string    `json:"batch_id"`
	TotalReadings     int       `json:"total_readings"`
	AnomaliesDetected int       `json:"anomalies_detected"`
	ScoredAt          time.Time `json:"scored_at"`
}
