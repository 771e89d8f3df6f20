package ws

import (
	"time"

	"github.com/pulsegrid/pulsegrid/pkg/sensor"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageBatchScored     MessageType = "batch.scored"
	MessageAnomalyDetected MessageType = "anomaly.detected"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      MessageType `json:"type"`
	BatchID   string      `json:"batch_id"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// BatchScoredData is the payload for batch.scored messages.
type BatchScoredData struct {
	TotalReadings     int `json:"total_readings"`
	AnomaliesDetected int `json:"anomalies_detected"`
}

// AnomalyDetectedData is the payload for anomaly.detected messages.
type AnomalyDetectedData struct {
	Result sensor.ScoreResult `json:"result"`
}
