package event

import (
	"time"

	"github.com/google/uuid"
)

const (
	// EventTypePredictionCompleted is emitted for every completed prediction.
	EventTypePredictionCompleted = "fraud.prediction.completed"

	// EventTypeHighRiskDetected is emitted when a transaction is predicted
	// fraudulent or scored in the High risk bucket.
	EventTypeHighRiskDetected = "fraud.prediction.high_risk"
)

// PredictionCompleted is published when the prediction pipeline finishes
// for a transaction.
type PredictionCompleted struct {
	EventID       uuid.UUID `json:"event_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Prediction    int       `json:"prediction"`
	Probability   float64   `json:"probability"`
	RiskLevel     string    `json:"risk_level"`
	ModelVersion  string    `json:"model_version"`
	DriftScore    float64   `json:"drift_score"`
	DriftDetected bool      `json:"drift_detected"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// NewPredictionCompleted creates a PredictionCompleted event.
func NewPredictionCompleted(transactionID uuid.UUID, prediction int, probability float64, riskLevel, modelVersion string, driftScore float64, driftDetected bool, occurredAt time.Time) PredictionCompleted {
	return PredictionCompleted{
		EventID:       uuid.New(),
		TransactionID: transactionID,
		Prediction:    prediction,
		Probability:   probability,
		RiskLevel:     riskLevel,
		ModelVersion:  modelVersion,
		DriftScore:    driftScore,
		DriftDetected: driftDetected,
		OccurredAt:    occurredAt,
	}
}

// EventType returns the event type identifier.
func (e PredictionCompleted) EventType() string {
	return EventTypePredictionCompleted
}

// AggregateID returns the transaction ID as the aggregate identifier.
func (e PredictionCompleted) AggregateID() uuid.UUID {
	return e.TransactionID
}

// HighRiskDetected is published when a prediction warrants downstream
// alerting.
type HighRiskDetected struct {
	EventID       uuid.UUID `json:"event_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Probability   float64   `json:"probability"`
	RiskLevel     string    `json:"risk_level"`
	ModelVersion  string    `json:"model_version"`
	DetectedAt    time.Time `json:"detected_at"`
}

// NewHighRiskDetected creates a HighRiskDetected event.
func NewHighRiskDetected(transactionID uuid.UUID, probability float64, riskLevel, modelVersion string, detectedAt time.Time) HighRiskDetected {
	return HighRiskDetected{
		EventID:       uuid.New(),
		TransactionID: transactionID,
		Probability:   probability,
		RiskLevel:     riskLevel,
		ModelVersion:  modelVersion,
		DetectedAt:    detectedAt,
	}
}

// EventType returns the event type identifier.
func (e HighRiskDetected) EventType() string {
	return EventTypeHighRiskDetected
}

// AggregateID returns the transaction ID as the aggregate identifier.
func (e HighRiskDetected) AggregateID() uuid.UUID {
	return e.TransactionID
}
