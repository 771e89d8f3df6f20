package detect

// DetectConfig holds configuration for the detect module.
type DetectConfig struct {
	// Threshold is the Modified Z-Score magnitude above which a reading is
	// flagged anomalous. Must be positive.
	Threshold float64 `mapstructure:"threshold"`

	// MaxBatchSize caps the number of readings accepted per request.
	MaxBatchSize int `mapstructure:"max_batch_size"`
}

// DefaultConfig returns sensible defaults for the detect module.
func DefaultConfig() DetectConfig {
	return DetectConfig{
		Threshold:    DefaultThreshold,
		MaxBatchSize: 10000,
	}
}
