package port

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...interface{}) error
}

// PredictionLogEntry is one line of the prediction audit log.
type PredictionLogEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Prediction    int       `json:"prediction"`
	Probability   float64   `json:"probability"`
	RiskLevel     string    `json:"risk_level"`
	ModelVersion  string    `json:"model_version"`
	DriftScore    float64   `json:"drift_score"`
	LatencyMS     float64   `json:"latency_ms"`
	Amount        float64   `json:"amount"`
	ElapsedTime   float64   `json:"time"`
}

// PredictionLogger records completed predictions for offline analysis.
// Logging is best-effort; callers must not fail a request on logger errors.
type PredictionLogger interface {
	Log(ctx context.Context, entry PredictionLogEntry) error
}
