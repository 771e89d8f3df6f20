package detect

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pulsegrid/pulsegrid/pkg/plugin"
	"github.com/pulsegrid/pulsegrid/pkg/sensor"
	"go.uber.org/zap"
)

// requiredKeys are the per-reading payload keys, in reporting order.
var requiredKeys = []string{"sensor_id", sensor.MetricTemperature, sensor.MetricVibration}

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/readings", Handler: m.handleScoreReadings},
		{Method: "GET", Path: "/config", Handler: m.handleGetConfig},
	}
}

// ScoreRequest is the request body for POST /detect/readings.
type ScoreRequest struct {
	Readings []sensor.Reading `json:"readings"`
}

// ScoreResponse is the response body for POST /detect/readings.
type ScoreResponse struct {
	BatchID           string               `json:"batch_id"`
	TotalReadings     int                  `json:"total_readings"`
	AnomaliesDetected int                  `json:"anomalies_detected"`
	Results           []sensor.ScoreResult `json:"results"`
}

// ConfigResponse is the response body for GET /detect/config.
type ConfigResponse struct {
	Threshold    float64  `json:"threshold"`
	Metrics      []string `json:"metrics"`
	MaxBatchSize int      `json:"max_batch_size"`
}

// handleScoreReadings scores a batch of sensor readings.
//
//	@Summary		Score readings
//	@Description	Runs anomaly detection over a batch of sensor readings and returns per-reading scores.
//	@Tags			detect
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request body ScoreRequest true "Batch of readings"
//	@Success		200 {object} ScoreResponse
//	@Failure		400 {object} map[string]any
//	@Failure		500 {object} map[string]any
//	@Router			/detect/readings [post]
func (m *Module) handleScoreReadings(w http.ResponseWriter, r *http.Request) {
	readings, problem := m.decodeReadings(r)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	defer func() {
		// The detector never fails on a validated batch; anything that
		// surfaces here is a bug and must not leak internals to the caller.
		if rec := recover(); rec != nil {
			m.logger.Error("scoring panicked", zap.Any("panic", rec))
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
	}()

	batchID, results := m.score(readings)

	anomalyCount := 0
	for _, res := range results {
		if res.IsAnomaly {
			anomalyCount++
		}
	}

	writeJSON(w, http.StatusOK, ScoreResponse{
		BatchID:           batchID,
		TotalReadings:     len(results),
		AnomaliesDetected: anomalyCount,
		Results:           results,
	})
}

// handleGetConfig returns the active scoring configuration.
//
//	@Summary		Scoring configuration
//	@Description	Returns the active threshold, scored metrics, and batch limits.
//	@Tags			detect
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200 {object} ConfigResponse
//	@Router			/detect/config [get]
func (m *Module) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ConfigResponse{
		Threshold:    m.detector.Threshold(),
		Metrics:      []string{sensor.MetricTemperature, sensor.MetricVibration},
		MaxBatchSize: m.cfg.MaxBatchSize,
	})
}

// decodeReadings validates the request payload and converts it into a batch
// of readings. All schema validation happens here, before the detector is
// invoked; the returned problem string is empty on success.
func (m *Module) decodeReadings(r *http.Request) ([]sensor.Reading, string) {
	var body struct {
		Readings json.RawMessage `json:"readings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, "malformed JSON in request body"
	}
	if len(body.Readings) == 0 || string(body.Readings) == "null" {
		return nil, "request must include a non-empty 'readings' list"
	}

	var raws []map[string]json.RawMessage
	if err := json.Unmarshal(body.Readings, &raws); err != nil {
		return nil, "request must include a non-empty 'readings' list"
	}
	if len(raws) == 0 {
		return nil, "request must include a non-empty 'readings' list"
	}
	if len(raws) > m.cfg.MaxBatchSize {
		return nil, fmt.Sprintf("batch of %d readings exceeds the limit of %d", len(raws), m.cfg.MaxBatchSize)
	}

	readings := make([]sensor.Reading, len(raws))
	for idx, raw := range raws {
		var missing []string
		for _, key := range requiredKeys {
			if _, ok := raw[key]; !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Sprintf("reading at index %d is missing keys: [%s]", idx, strings.Join(missing, " "))
		}

		if err := json.Unmarshal(raw["sensor_id"], &readings[idx].SensorID); err != nil {
			return nil, fmt.Sprintf("reading at index %d: sensor_id must be a string", idx)
		}
		if err := json.Unmarshal(raw[sensor.MetricTemperature], &readings[idx].Temperature); err != nil {
			return nil, fmt.Sprintf("reading at index %d: temperature must be a number", idx)
		}
		if err := json.Unmarshal(raw[sensor.MetricVibration], &readings[idx].Vibration); err != nil {
			return nil, fmt.Sprintf("reading at index %d: vibration must be a number", idx)
		}
	}
	return readings, ""
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://pulsegrid.io/problems/" + strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "-"),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
