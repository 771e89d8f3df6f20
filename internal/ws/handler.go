package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/pulsegrid/pulsegrid/internal/auth"
	"github.com/pulsegrid/pulsegrid/internal/detect"
	"github.com/pulsegrid/pulsegrid/pkg/plugin"
	"github.com/pulsegrid/pulsegrid/pkg/sensor"
	"go.uber.org/zap"
)

// Handler provides WebSocket endpoints for real-time detection updates.
type Handler struct {
	hub    *Hub
	tokens *auth.TokenService
	bus    plugin.EventBus
	logger *zap.Logger
}

// Compile-time check that Handler implements the server interface.
var _ interface {
	RegisterRoutes(mux *http.ServeMux)
} = (*Handler)(nil)

// NewHandler creates a WebSocket handler and subscribes to detection events.
// A nil TokenService disables authentication on the stream endpoint.
func NewHandler(tokens *auth.TokenService, bus plugin.EventBus, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    NewHub(logger),
		tokens: tokens,
		bus:    bus,
		logger: logger,
	}
	h.subscribeToEvents()
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/detections", h.handleDetectionStream)
}

// handleDetectionStream upgrades the connection to WebSocket and streams
// batch summaries and anomaly events.
func (h *Handler) handleDetectionStream(w http.ResponseWriter, r *http.Request) {
	clientID := "anonymous"

	if h.tokens != nil {
		// Validate JWT from query parameter (browser WS API doesn't support headers).
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token parameter", http.StatusUnauthorized)
			return
		}

		claims, err := h.tokens.ValidateAccessToken(token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		clientID = claims.ClientID
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Allow any origin since we validate via JWT token.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:     conn,
		clientID: clientID,
		send:     make(chan Message, 256),
		logger:   h.logger,
	}

	h.hub.Register(client)

	// Run read and write pumps. When either exits, clean up.
	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// readPump blocks until client disconnects.
	client.readPump(ctx)

	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// subscribeToEvents subscribes to detection events and forwards them to all
// connected WebSocket clients.
func (h *Handler) subscribeToEvents() {
	if h.bus == nil {
		return
	}

	h.bus.Subscribe(detect.TopicBatchScored, func(_ context.Context, event plugin.Event) {
		summary, ok := event.Payload.(sensor.BatchSummary)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageBatchScored,
			BatchID:   summary.BatchID,
			Timestamp: event.Timestamp,
			Data: BatchScoredData{
				TotalReadings:     summary.TotalReadings,
				AnomaliesDetected: summary.AnomaliesDetected,
			},
		})
	})

	h.bus.Subscribe(detect.TopicAnomalyDetected, func(_ context.Context, event plugin.Event) {
		result, ok := event.Payload.(sensor.ScoreResult)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageAnomalyDetected,
			Timestamp: event.Timestamp,
			Data: AnomalyDetectedData{
				Result: result,
			},
		})
	})

	h.logger.Info("subscribed to detection events for WebSocket broadcasting")
}
