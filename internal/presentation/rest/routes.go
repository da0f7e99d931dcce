package rest

import "net/http"

// RegisterRoutes mounts all endpoints on the provided ServeMux. The
// metrics handler is the Prometheus text exposition endpoint.
func RegisterRoutes(mux *http.ServeMux, predict *PredictHandler, health *HealthHandler, metrics http.Handler) {
	mux.HandleFunc("POST /predict", predict.Predict)
	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /{$}", health.Root)
	mux.Handle("GET /metrics", metrics)
}
