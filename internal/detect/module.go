// Package detect implements the PulseGrid anomaly scoring module: a
// stateless Modified Z-Score transform over batches of sensor readings,
// exposed behind a validating HTTP boundary.
package detect

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pulsegrid/pulsegrid/pkg/plugin"
	"github.com/pulsegrid/pulsegrid/pkg/sensor"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HTTPProvider  = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
	_ plugin.Validator     = (*Module)(nil)
)

// Module implements the detect scoring module.
type Module struct {
	logger   *zap.Logger
	cfg      DetectConfig
	detector *Detector
	bus      plugin.EventBus

	batches   atomic.Int64
	anomalies atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new detect module instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "detect",
		Version:     "0.1.0",
		Description: "Modified Z-Score anomaly scoring for sensor readings",
		Required:    true,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal detect config: %w", err)
		}
	}

	detector, err := NewDetector(m.cfg.Threshold)
	if err != nil {
		return fmt.Errorf("configure detector: %w", err)
	}
	m.detector = detector
	m.bus = deps.Bus

	m.logger.Info("detect module initialized",
		zap.Float64("threshold", m.cfg.Threshold),
		zap.Int("max_batch_size", m.cfg.MaxBatchSize),
	)
	return nil
}

// ValidateConfig implements plugin.Validator.
func (m *Module) ValidateConfig() error {
	if m.cfg.MaxBatchSize <= 0 {
		return fmt.Errorf("max_batch_size must be positive, got %d", m.cfg.MaxBatchSize)
	}
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.logger.Info("detect module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.logger.Info("detect module stopped")
	return nil
}

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"threshold":          strconv.FormatFloat(m.detector.Threshold(), 'f', -1, 64),
			"batches_scored":     strconv.FormatInt(m.batches.Load(), 10),
			"anomalies_detected": strconv.FormatInt(m.anomalies.Load(), 10),
		},
	}
}

// score runs a validated batch through the detector, updates counters, and
// publishes the batch summary on the event bus.
func (m *Module) score(readings []sensor.Reading) (string, []sensor.ScoreResult) {
	batchID := uuid.NewString()
	results := m.detector.Detect(readings)

	anomalyCount := 0
	for _, res := range results {
		if res.IsAnomaly {
			anomalyCount++
		}
		for _, metric := range res.AnomalousMetrics {
			anomaliesDetectedTotal.WithLabelValues(metric).Inc()
		}
	}

	m.batches.Add(1)
	m.anomalies.Add(int64(anomalyCount))
	batchesScoredTotal.Inc()
	readingsScoredTotal.Add(float64(len(results)))

	m.logger.Info("batch scored",
		zap.String("batch_id", batchID),
		zap.Int("total_readings", len(results)),
		zap.Int("anomalies_detected", anomalyCount),
	)

	if m.bus != nil {
		summary := sensor.BatchSummary{
			BatchID:           batchID,
			TotalReadings:     len(results),
			AnomaliesDetected: anomalyCount,
			ScoredAt:          time.Now(),
		}
		ctx := m.ctx
		if ctx == nil {
			ctx = context.Background()
		}
		m.bus.PublishAsync(ctx, plugin.Event{
			Topic:     TopicBatchScored,
			Source:    "detect",
			Timestamp: summary.ScoredAt,
			Payload:   summary,
		})
		for _, res := range results {
			if res.IsAnomaly {
				m.bus.PublishAsync(ctx, plugin.Event{
					Topic:     TopicAnomalyDetected,
					Source:    "detect",
					Timestamp: summary.ScoredAt,
					Payload:   res,
				})
			}
		}
	}

	return batchID, results
}
