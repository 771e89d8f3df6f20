package detect

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/pulsegrid/pulsegrid/pkg/sensor"
)

// clusteredBatch returns n readings tightly clustered around the given
// baselines, with enough spread to keep the MAD non-zero.
func clusteredBatch(n int, tempBase, vibBase float64) []sensor.Reading {
	readings := make([]sensor.Reading, n)
	for i := range readings {
		jitter := float64(i%5-2) / 10 // -0.2 .. +0.2
		readings[i] = sensor.Reading{
			SensorID:    fmt.Sprintf("pump-%02d", i),
			Temperature: tempBase + jitter,
			Vibration:   vibBase + jitter/100,
		}
	}
	return readings
}

func TestNewDetector_InvalidThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
	}{
		{"zero", 0},
		{"negative", -3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDetector(tt.threshold); err == nil {
				t.Errorf("NewDetector(%v) succeeded, want error", tt.threshold)
			}
		})
	}
}

func TestDetect_EmptyBatch(t *testing.T) {
	d, err := NewDetector(DefaultThreshold)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	results := d.Detect(nil)
	if results == nil {
		t.Fatal("Detect(nil) = nil, want empty slice")
	}
	if len(results) != 0 {
		t.Errorf("Detect(nil) returned %d results, want 0", len(results))
	}
}

func TestDetect_Deterministic(t *testing.T) {
	d, _ := NewDetector(DefaultThreshold)
	batch := clusteredBatch(20, 70, 0.5)
	batch[7].Temperature = 200

	first := d.Detect(batch)
	second := d.Detect(batch)
	if !reflect.DeepEqual(first, second) {
		t.Error("Detect is not deterministic for identical input")
	}
}

func TestDetect_OrderPreserved(t *testing.T) {
	d, _ := NewDetector(DefaultThreshold)
	batch := clusteredBatch(20, 70, 0.5)

	results := d.Detect(batch)
	if len(results) != len(batch) {
		t.Fatalf("got %d results for %d readings", len(results), len(batch))
	}
	for i := range batch {
		if results[i].SensorID != batch[i].SensorID {
			t.Errorf("results[%d].SensorID = %q, want %q", i, results[i].SensorID, batch[i].SensorID)
		}
		if results[i].Temperature != batch[i].Temperature || results[i].Vibration != batch[i].Vibration {
			t.Errorf("results[%d] does not echo the input reading", i)
		}
	}
}

func TestDetect_IdenticalValuesNoAnomalies(t *testing.T) {
	d, _ := NewDetector(DefaultThreshold)

	batch := make([]sensor.Reading, 10)
	for i := range batch {
		batch[i] = sensor.Reading{SensorID: "s-1", Temperature: 70, Vibration: 0.5}
	}

	for i, res := range d.Detect(batch) {
		if res.IsAnomaly {
			t.Errorf("results[%d].IsAnomaly = true for identical values", i)
		}
		if res.AnomalyScores.Temperature != 0 || res.AnomalyScores.Vibration != 0 {
			t.Errorf("results[%d] scores = %+v, want zeros", i, res.AnomalyScores)
		}
	}
}

func TestDetect_SingleSpikeDetected(t *testing.T) {
	d, _ := NewDetector(DefaultThreshold)

	batch := clusteredBatch(20, 70, 0.5)
	spike := 12
	batch[spike].Temperature = 200

	results := d.Detect(batch)
	if !results[spike].IsAnomaly {
		t.Fatal("spike reading not flagged as anomaly")
	}
	if got := results[spike].AnomalousMetrics; len(got) != 1 || got[0] != sensor.MetricTemperature {
		t.Errorf("AnomalousMetrics = %v, want [temperature]", got)
	}

	for i, res := range results {
		if i == spike {
			continue
		}
		if res.IsAnomaly {
			t.Errorf("results[%d] flagged, want only the spike at index %d", i, spike)
		}
	}
}

func TestDetect_MultiMetricAnomaly(t *testing.T) {
	d, _ := NewDetector(DefaultThreshold)

	batch := clusteredBatch(20, 70, 0.5)
	batch[3].Temperature = 500
	batch[3].Vibration = 40

	results := d.Detect(batch)
	want := []string{sensor.MetricTemperature, sensor.MetricVibration}
	if !reflect.DeepEqual(results[3].AnomalousMetrics, want) {
		t.Errorf("AnomalousMetrics = %v, want %v", results[3].AnomalousMetrics, want)
	}
	if !results[3].IsAnomaly {
		t.Error("multi-metric outlier not flagged")
	}
}

func TestDetect_ThresholdMonotonicity(t *testing.T) {
	batch := clusteredBatch(20, 70, 0.5)
	batch[0].Temperature = 85
	batch[5].Temperature = 120
	batch[9].Temperature = 200

	var prev int
	for i, threshold := range []float64{100, 10, 3.5, 1, 0.5} {
		d, err := NewDetector(threshold)
		if err != nil {
			t.Fatalf("NewDetector(%v): %v", threshold, err)
		}
		count := 0
		for _, res := range d.Detect(batch) {
			if res.IsAnomaly {
				count++
			}
		}
		if i > 0 && count < prev {
			t.Errorf("threshold %v flagged %d anomalies, fewer than %d at a higher threshold", threshold, count, prev)
		}
		prev = count
	}
}

func TestDetect_ZeroMADFallbackFlagsSpike(t *testing.T) {
	// Six identical readings plus one spike: MAD is zero, and the std-dev
	// fallback caps the spike score at sqrt(n-1) ~= 2.449 for n=7, so a
	// lower threshold is needed to observe the flag.
	d, _ := NewDetector(2.0)

	batch := make([]sensor.Reading, 7)
	for i := range batch {
		batch[i] = sensor.Reading{SensorID: "s-1", Temperature: 70, Vibration: 0.5}
	}
	batch[6].Temperature = 200

	results := d.Detect(batch)
	if !results[6].IsAnomaly {
		t.Error("spike in constant data not flagged via std-dev fallback")
	}
	for i := 0; i < 6; i++ {
		if results[i].IsAnomaly {
			t.Errorf("baseline reading %d flagged", i)
		}
	}
}

func TestDetect_ExactThresholdNotAnomalous(t *testing.T) {
	// med = 17, MAD = 8: the outlier scores exactly 0.6745 * 99 / 8.
	// A score equal to the threshold must not flag.
	score := 0.6745 * 99 / 8
	d, err := NewDetector(score)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	batch := []sensor.Reading{
		{SensorID: "a", Temperature: 1, Vibration: 0.5},
		{SensorID: "b", Temperature: 9, Vibration: 0.5},
		{SensorID: "c", Temperature: 17, Vibration: 0.5},
		{SensorID: "d", Temperature: 25, Vibration: 0.5},
		{SensorID: "e", Temperature: 116, Vibration: 0.5},
	}

	if res := d.Detect(batch)[4]; res.IsAnomaly {
		t.Errorf("score exactly at threshold flagged as anomaly: %+v", res)
	}
}

func TestDetect_FlaggingUsesUnroundedScore(t *testing.T) {
	// The outlier's unrounded score is 8.3469375, which rounds down to
	// 8.3469 for display. With a threshold between the two the reading
	// must still be flagged.
	d, err := NewDetector(8.34691)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	batch := []sensor.Reading{
		{SensorID: "a", Temperature: 1, Vibration: 0.5},
		{SensorID: "b", Temperature: 9, Vibration: 0.5},
		{SensorID: "c", Temperature: 17, Vibration: 0.5},
		{SensorID: "d", Temperature: 25, Vibration: 0.5},
		{SensorID: "e", Temperature: 116, Vibration: 0.5},
	}

	res := d.Detect(batch)[4]
	if res.AnomalyScores.Temperature != 8.3469 {
		t.Errorf("displayed score = %v, want 8.3469", res.AnomalyScores.Temperature)
	}
	if res.AnomalyScores.Temperature > d.Threshold() {
		t.Fatalf("test setup broken: rounded score %v should sit below threshold %v",
			res.AnomalyScores.Temperature, d.Threshold())
	}
	if !res.IsAnomaly {
		t.Error("reading not flagged even though its unrounded score exceeds the threshold")
	}
}

func TestDetect_RoundedScorePrecision(t *testing.T) {
	d, _ := NewDetector(DefaultThreshold)

	batch := clusteredBatch(20, 70, 0.5)
	batch[4].Temperature = 93.7

	for i, res := range d.Detect(batch) {
		for name, s := range map[string]float64{
			"temperature": res.AnomalyScores.Temperature,
			"vibration":   res.AnomalyScores.Vibration,
		} {
			if round4(s) != s {
				t.Errorf("results[%d] %s score %v has more than 4 decimal digits", i, name, s)
			}
		}
	}
}
