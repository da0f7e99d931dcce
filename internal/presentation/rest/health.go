package rest

import (
	"net/http"
)

// HealthHandler provides the health and root endpoints.
type HealthHandler struct {
	predictor Predictor
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(predictor Predictor) *HealthHandler {
	return &HealthHandler{predictor: predictor}
}

// Health handles GET /health, reporting artifact readiness and the
// lifecycle state.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.predictor.Health())
}

// rootResponse lists the available endpoints.
type rootResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message: "Fraud Detection API",
		Endpoints: map[string]string{
			"prediction": "/predict",
			"health":     "/health",
			"metrics":    "/metrics",
		},
	})
}
