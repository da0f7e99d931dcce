package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the prediction pipeline.
type Metrics struct {
	predictions *prometheus.CounterVec
	latency     prometheus.Histogram
	apiRequests *prometheus.CounterVec
	driftScore  prometheus.Gauge
	fieldDrift  *prometheus.GaugeVec
}

// NewMetrics registers the pipeline collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		predictions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fraud_predictions_total",
			Help: "Total number of predictions made",
		}, []string{"prediction_type", "risk_level"}),

		latency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fraud_prediction_latency_seconds",
			Help:    "Latency of fraud predictions",
			Buckets: prometheus.DefBuckets,
		}),

		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests",
		}, []string{"method", "endpoint", "status", "caller"}),

		driftScore: factory.NewGauge(prometheus.GaugeOpts{
			Name: "data_drift_score",
			Help: "Data drift detection score",
		}),

		fieldDrift: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "data_drift_field_score",
			Help: "Per-field data drift z-score",
		}, []string{"field"}),
	}
}

// RecordPrediction increments the prediction counter.
func (m *Metrics) RecordPrediction(predictionType, riskLevel string) {
	m.predictions.WithLabelValues(predictionType, riskLevel).Inc()
}

// ObservePredictionLatency records one prediction latency observation.
func (m *Metrics) ObservePredictionLatency(seconds float64) {
	m.latency.Observe(seconds)
}

// RecordAPIRequest increments the API request counter.
func (m *Metrics) RecordAPIRequest(method, endpoint, status, caller string) {
	m.apiRequests.WithLabelValues(method, endpoint, status, caller).Inc()
}

// PublishFieldScore implements service.DriftSink.
func (m *Metrics) PublishFieldScore(field string, score float64) error {
	m.fieldDrift.WithLabelValues(field).Set(score)
	return nil
}

// PublishAggregate implements service.DriftSink.
func (m *Metrics) PublishAggregate(score float64, _ bool) error {
	m.driftScore.Set(score)
	return nil
}

// Handler returns the pull-based text exposition handler for /metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
