package detect

import (
	"errors"

	"github.com/pulsegrid/pulsegrid/pkg/sensor"
)

// DefaultThreshold is the Modified Z-Score magnitude above which a reading
// is flagged. 3.5 is the conventional conservative choice for MAD-based
// outlier detection.
const DefaultThreshold = 3.5

// ErrInvalidThreshold is returned when constructing a Detector with a
// non-positive threshold.
var ErrInvalidThreshold = errors.New("detect: threshold must be a positive number")

// Detector scores batches of sensor readings using the Modified Z-Score
// statistic, per metric column independently. The threshold is fixed at
// construction and never mutated, so a single Detector is safe for
// unsynchronized concurrent use.
type Detector struct {
	threshold float64
}

// NewDetector creates a Detector with the given flagging threshold.
// A threshold <= 0 is a configuration error, never silently clamped.
func NewDetector(threshold float64) (*Detector, error) {
	if threshold <= 0 {
		return nil, ErrInvalidThreshold
	}
	return &Detector{threshold: threshold}, nil
}

// Threshold returns the configured flagging threshold.
func (d *Detector) Threshold() float64 {
	return d.threshold
}

// Detect scores a batch of readings and flags those whose Modified Z-Score
// on either metric strictly exceeds the threshold. The result order matches
// the input order; an empty batch yields an empty result. Detect is a pure
// function of the batch: given the same input it always returns the same
// output, and it never fails for a well-formed batch.
func (d *Detector) Detect(readings []sensor.Reading) []sensor.ScoreResult {
	if len(readings) == 0 {
		return []sensor.ScoreResult{}
	}

	temps := make([]float64, len(readings))
	vibs := make([]float64, len(readings))
	for i, r := range readings {
		temps[i] = r.Temperature
		vibs[i] = r.Vibration
	}

	tempScores := modifiedZScores(temps)
	vibScores := modifiedZScores(vibs)

	results := make([]sensor.ScoreResult, len(readings))
	for i, r := range readings {
		// Flagging uses the unrounded scores; rounding below is
		// presentation only.
		tripped := make([]string, 0, 2)
		if tempScores[i] > d.threshold {
			tripped = append(tripped, sensor.MetricTemperature)
		}
		if vibScores[i] > d.threshold {
			tripped = append(tripped, sensor.MetricVibration)
		}

		results[i] = sensor.ScoreResult{
			SensorID:    r.SensorID,
			Temperature: r.Temperature,
			Vibration:   r.Vibration,
			IsAnomaly:   len(tripped) > 0,
			AnomalyScores: sensor.MetricScores{
				Temperature: round4(tempScores[i]),
				Vibration:   round4(vibScores[i]),
			},
			AnomalousMetrics: tripped,
		}
	}
	return results
}
