package dto

// PredictRequest is the input DTO for the PredictTransaction use case. The
// feature mapping is the decoded JSON request body; Caller is the identity
// string used only for metrics labeling.
type PredictRequest struct {
	Features map[string]any
	Caller   string
}

// PredictResponse is the output DTO returned after a prediction.
type PredictResponse struct {
	Prediction       int     `json:"prediction"`
	Probability      float64 `json:"probability"`
	RiskLevel        string  `json:"risk_level"`
	Message          string  `json:"message"`
	ModelVersion     string  `json:"model_version"`
	TransactionID    string  `json:"transaction_id"`
	DriftDetected    bool    `json:"drift_detected"`
	ProcessingTimeMS float64 `json:"processing_time_ms"`
}

// HealthResponse reports the serving lifecycle state and artifact readiness.
type HealthResponse struct {
	Status       string `json:"status"`
	State        string `json:"state"`
	ModelLoaded  bool   `json:"model_loaded"`
	ScalerLoaded bool   `json:"scaler_loaded"`
}
