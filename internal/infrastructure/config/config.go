package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the scoring service.
type Config struct {
	HTTPPort string

	ClassifierPath string
	ScalerPath     string
	BaselinePath   string

	KafkaEnabled bool
	KafkaBroker  string
	KafkaTopic   string

	AuditLogPath string

	ModelVersions string // e.g. "v1.0=0.8,v2.0=0.2"; empty uses the artifact version

	DriftEpsilon   float64
	DriftThreshold float64

	OTLPEndpoint string
	Environment  string
	LogLevel     string
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8000"),
		ClassifierPath: getEnv("MODEL_PATH", "models/classifier.json"),
		ScalerPath:     getEnv("SCALER_PATH", "models/scaler.json"),
		BaselinePath:   getEnv("BASELINE_PATH", "models/baseline.yaml"),
		KafkaEnabled:   getEnvBool("KAFKA_ENABLED", false),
		KafkaBroker:    getEnv("KAFKA_BROKER", "localhost:9092"),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "fraud.predictions"),
		AuditLogPath:   getEnv("AUDIT_LOG_PATH", ""),
		ModelVersions:  getEnv("MODEL_VERSIONS", ""),
		DriftEpsilon:   getEnvFloat("DRIFT_EPSILON", 0),
		DriftThreshold: getEnvFloat("DRIFT_THRESHOLD", 0),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// HTTPAddress returns the full HTTP listen address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

// VersionWeights parses the MODEL_VERSIONS traffic-split setting into
// version → weight. An empty setting returns nil.
func (c *Config) VersionWeights() (map[string]float64, error) {
	if c.ModelVersions == "" {
		return nil, nil
	}

	weights := make(map[string]float64)
	for _, pair := range strings.Split(c.ModelVersions, ",") {
		name, raw, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found || name == "" {
			return nil, fmt.Errorf("invalid model version entry %q", pair)
		}
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid weight for model version %s: %w", name, err)
		}
		weights[name] = w
	}
	return weights, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}
