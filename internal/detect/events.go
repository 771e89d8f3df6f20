package detect

// Event topics published by the detect module.
const (
	TopicBatchScored     = "detect.batch.scored"
	TopicAnomalyDetected = "detect.anomaly.detected"
)
