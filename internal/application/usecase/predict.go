package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/fraudguard/scoring-service/internal/application/dto"
	"github.com/fraudguard/scoring-service/internal/domain/event"
	"github.com/fraudguard/scoring-service/internal/domain/model"
	"github.com/fraudguard/scoring-service/internal/domain/port"
	"github.com/fraudguard/scoring-service/internal/domain/service"
	"github.com/fraudguard/scoring-service/internal/domain/valueobject"
)

// ErrServiceUnavailable indicates the prediction pipeline has not finished
// loading its model and scaler artifacts. Callers may retry after backoff.
var ErrServiceUnavailable = errors.New("service unavailable: model or scaler not loaded")

// PredictionError wraps a failure in the scale/classify/bucket stages of
// the pipeline. Requests failing this way are not retried internally.
type PredictionError struct {
	Err error
}

// Error implements the error interface.
func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

// Unwrap exposes the underlying cause.
func (e *PredictionError) Unwrap() error {
	return e.Err
}

// ArtifactSource loads the serving artifacts produced by offline training.
type ArtifactSource interface {
	// LoadClassifier returns the trained classifier and its version label.
	LoadClassifier() (service.Classifier, string, error)

	// LoadScaler returns the fitted feature scaler.
	LoadScaler() (*service.FeatureScaler, error)

	// LoadBaseline returns the drift baseline, or nil when no baseline is
	// configured (drift scoring is then disabled).
	LoadBaseline() (map[string]service.FieldBaseline, error)
}

// MetricsRecorder receives per-prediction metrics. Recording is
// best-effort and must never affect the request outcome.
type MetricsRecorder interface {
	RecordPrediction(predictionType, riskLevel string)
	ObservePredictionLatency(seconds float64)
}

// modelContext is the immutable serving state shared by all requests. It
// is built once during Load and swapped in atomically, so requests either
// see the whole loaded context or none of it.
type modelContext struct {
	classifier service.Classifier
	scaler     *service.FeatureScaler
	drift      *service.DriftScorer
	version    string
}

// PredictionService orchestrates one prediction request: schema
// validation, drift scoring, scaling, inference, risk bucketing, and
// best-effort metrics, events, and audit logging.
type PredictionService struct {
	source    ArtifactSource
	split     service.TrafficSplit
	publisher port.EventPublisher
	audit     port.PredictionLogger
	metrics   MetricsRecorder
	driftCfg  service.DriftConfig
	driftSink service.DriftSink
	logger    *slog.Logger
	tracer    trace.Tracer

	state atomic.Pointer[modelContext]
}

// Options carries the optional collaborators of a PredictionService. Every
// field may be nil (or zero), disabling the corresponding concern.
type Options struct {
	Split     service.TrafficSplit
	Publisher port.EventPublisher
	Audit     port.PredictionLogger
	Metrics   MetricsRecorder
	DriftCfg  service.DriftConfig
	DriftSink service.DriftSink
}

// NewPredictionService creates an unloaded PredictionService. The service
// refuses requests with ErrServiceUnavailable until Load succeeds.
func NewPredictionService(source ArtifactSource, opts Options, logger *slog.Logger) *PredictionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionService{
		source:    source,
		split:     opts.Split,
		publisher: opts.Publisher,
		audit:     opts.Audit,
		metrics:   opts.Metrics,
		driftCfg:  opts.DriftCfg,
		driftSink: opts.DriftSink,
		logger:    logger,
		tracer:    otel.Tracer("scoring-service"),
	}
}

// Load fetches all serving artifacts and transitions the service to Ready
// in a single atomic swap. If any artifact fails to load the service stays
// unready and the error is returned; there is no partially loaded state.
func (s *PredictionService) Load(ctx context.Context) error {
	classifier, version, err := s.source.LoadClassifier()
	if err != nil {
		return fmt.Errorf("loading classifier: %w", err)
	}

	scaler, err := s.source.LoadScaler()
	if err != nil {
		return fmt.Errorf("loading scaler: %w", err)
	}

	baseline, err := s.source.LoadBaseline()
	if err != nil {
		return fmt.Errorf("loading drift baseline: %w", err)
	}

	mc := &modelContext{
		classifier: classifier,
		scaler:     scaler,
		version:    version,
	}
	if len(baseline) > 0 {
		mc.drift = service.NewDriftScorer(baseline, s.driftCfg, s.driftSink, s.logger)
	} else {
		s.logger.Info("no drift baseline configured, drift scoring disabled")
	}

	s.state.Store(mc)
	s.logger.Info("serving artifacts loaded",
		"model_version", version,
		"drift_enabled", mc.drift != nil,
	)
	return nil
}

// Ready reports whether the startup load has completed.
func (s *PredictionService) Ready() bool {
	return s.state.Load() != nil
}

// Health reports the lifecycle state and artifact readiness.
func (s *PredictionService) Health() dto.HealthResponse {
	mc := s.state.Load()
	if mc == nil {
		return dto.HealthResponse{
			Status: "initializing",
			State:  "uninitialized",
		}
	}
	return dto.HealthResponse{
		Status:       "healthy",
		State:        "ready",
		ModelLoaded:  mc.classifier != nil,
		ScalerLoaded: mc.scaler != nil,
	}
}

// Execute runs the prediction pipeline for one transaction record.
//
// Failure semantics: a malformed record returns *model.SchemaError; an
// unready service returns ErrServiceUnavailable; failures in scaling or
// inference return *PredictionError. Drift scoring, metrics, events, and
// audit logging never fail the request.
func (s *PredictionService) Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictResponse, error) {
	start := time.Now()

	mc := s.state.Load()
	if mc == nil {
		return dto.PredictResponse{}, ErrServiceUnavailable
	}

	ctx, span := s.tracer.Start(ctx, "predict")
	defer span.End()

	tx, err := model.NewTransaction(req.Features)
	if err != nil {
		return dto.PredictResponse{}, err
	}

	driftScore, driftDetected := 0.0, false
	if mc.drift != nil {
		driftScore, driftDetected = mc.drift.Score(tx.Features())
	}

	vector, err := mc.scaler.Transform(tx)
	if err != nil {
		if errors.Is(err, service.ErrScalerNotLoaded) {
			return dto.PredictResponse{}, ErrServiceUnavailable
		}
		return dto.PredictResponse{}, &PredictionError{Err: err}
	}

	prediction, err := mc.classifier.Predict(vector)
	if err != nil {
		if errors.Is(err, service.ErrModelNotLoaded) {
			return dto.PredictResponse{}, ErrServiceUnavailable
		}
		return dto.PredictResponse{}, &PredictionError{Err: err}
	}

	riskLevel := valueobject.RiskLevelFromProbability(prediction.Probability)

	version := mc.version
	if s.split != nil {
		version = s.split.Assign()
	}

	transactionID := uuid.New()
	latency := time.Since(start)

	predictionType := "legitimate"
	message := "Transaction seems legitimate"
	if prediction.Label == 1 {
		predictionType = "fraud"
		message = "Fraud detected!"
	}

	if s.metrics != nil {
		s.metrics.RecordPrediction(predictionType, riskLevel.String())
		s.metrics.ObservePredictionLatency(latency.Seconds())
	}

	s.publishEvents(ctx, transactionID, prediction, riskLevel, version, driftScore, driftDetected)
	s.logPrediction(ctx, transactionID, prediction, riskLevel, version, driftScore, tx, latency)

	s.logger.Debug("prediction completed",
		"transaction_id", transactionID.String(),
		"caller", req.Caller,
		"prediction", prediction.Label,
		"risk_level", riskLevel.String(),
		"drift_score", driftScore,
	)

	return dto.PredictResponse{
		Prediction:       prediction.Label,
		Probability:      prediction.Probability,
		RiskLevel:        riskLevel.String(),
		Message:          message,
		ModelVersion:     version,
		TransactionID:    transactionID.String(),
		DriftDetected:    driftDetected,
		ProcessingTimeMS: float64(latency.Microseconds()) / 1000.0,
	}, nil
}

// publishEvents emits domain events, best-effort.
func (s *PredictionService) publishEvents(ctx context.Context, transactionID uuid.UUID, prediction service.Prediction, riskLevel valueobject.RiskLevel, version string, driftScore float64, driftDetected bool) {
	if s.publisher == nil {
		return
	}

	now := time.Now().UTC()
	events := []interface{}{
		event.NewPredictionCompleted(transactionID, prediction.Label, prediction.Probability, riskLevel.String(), version, driftScore, driftDetected, now),
	}
	if prediction.Label == 1 || riskLevel.Equal(valueobject.RiskLevelHigh) {
		events = append(events, event.NewHighRiskDetected(transactionID, prediction.Probability, riskLevel.String(), version, now))
	}

	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("event publish failed", "transaction_id", transactionID.String(), "error", err)
	}
}

// logPrediction appends to the audit log, best-effort.
func (s *PredictionService) logPrediction(ctx context.Context, transactionID uuid.UUID, prediction service.Prediction, riskLevel valueobject.RiskLevel, version string, driftScore float64, tx *model.Transaction, latency time.Duration) {
	if s.audit == nil {
		return
	}

	entry := port.PredictionLogEntry{
		Timestamp:     time.Now().UTC(),
		TransactionID: transactionID,
		Prediction:    prediction.Label,
		Probability:   prediction.Probability,
		RiskLevel:     riskLevel.String(),
		ModelVersion:  version,
		DriftScore:    driftScore,
		LatencyMS:     float64(latency.Microseconds()) / 1000.0,
		Amount:        tx.Amount(),
		ElapsedTime:   tx.ElapsedTime(),
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Warn("prediction audit log failed", "transaction_id", transactionID.String(), "error", err)
	}
}
