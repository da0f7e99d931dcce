package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fraudguard/scoring-service/internal/application/dto"
	"github.com/fraudguard/scoring-service/internal/application/usecase"
	"github.com/fraudguard/scoring-service/internal/domain/model"
)

// callerHeader carries an optional caller identity used only for metrics
// labeling, never for authorization.
const callerHeader = "X-Caller-ID"

// Predictor executes the prediction pipeline.
type Predictor interface {
	Execute(ctx context.Context, req dto.PredictRequest) (dto.PredictResponse, error)
	Health() dto.HealthResponse
}

// APIRecorder counts API requests for metrics; may be nil.
type APIRecorder interface {
	RecordAPIRequest(method, endpoint, status, caller string)
}

// PredictHandler serves the prediction endpoint.
type PredictHandler struct {
	predictor Predictor
	recorder  APIRecorder
	logger    *slog.Logger
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(predictor Predictor, recorder APIRecorder, logger *slog.Logger) *PredictHandler {
	return &PredictHandler{
		predictor: predictor,
		recorder:  recorder,
		logger:    logger,
	}
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Detail string `json:"detail"`
}

// Predict handles POST /predict.
func (h *PredictHandler) Predict(w http.ResponseWriter, r *http.Request) {
	caller := r.Header.Get(callerHeader)
	if caller == "" {
		caller = "anonymous"
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		h.record(r, "error", caller)
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid JSON body"})
		return
	}

	resp, err := h.predictor.Execute(r.Context(), dto.PredictRequest{
		Features: raw,
		Caller:   caller,
	})
	if err != nil {
		h.record(r, "error", caller)
		h.writeError(w, err)
		return
	}

	h.record(r, "success", caller)
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps pipeline errors to HTTP statuses: SchemaError is a
// client fault, an unready service is 503, and everything else is a
// generic prediction failure.
func (h *PredictHandler) writeError(w http.ResponseWriter, err error) {
	var schemaErr *model.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: schemaErr.Error()})
	case errors.Is(err, usecase.ErrServiceUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Detail: "Model not loaded"})
	default:
		h.logger.Error("prediction failed", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Prediction failed: " + err.Error()})
	}
}

func (h *PredictHandler) record(r *http.Request, status, caller string) {
	if h.recorder != nil {
		h.recorder.RecordAPIRequest(r.Method, "/predict", status, caller)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
