package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fraudguard/scoring-service/internal/application/usecase"
	"github.com/fraudguard/scoring-service/internal/domain/service"
	"github.com/fraudguard/scoring-service/internal/infrastructure/artifact"
	"github.com/fraudguard/scoring-service/internal/infrastructure/audit"
	"github.com/fraudguard/scoring-service/internal/infrastructure/config"
	"github.com/fraudguard/scoring-service/internal/infrastructure/messaging"
	"github.com/fraudguard/scoring-service/internal/observability"
	"github.com/fraudguard/scoring-service/internal/presentation/rest"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  "json",
		Service: "scoring-service",
	})

	logger.Info("starting scoring-service",
		"http_port", cfg.HTTPPort,
		"model_path", cfg.ClassifierPath,
	)

	// Initialize tracing.
	shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: "scoring-service",
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		// The signal context is already cancelled when the defers run, so
		// the final span flush needs its own deadline.
		defer func() {
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer flushCancel()
			if err := shutdown(flushCtx); err != nil {
				logger.Warn("tracer shutdown error", "error", err)
			}
		}()
	}

	// Metrics registry and collectors.
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	// Wire infrastructure adapters.
	loader := &artifact.Loader{
		ClassifierPath: cfg.ClassifierPath,
		ScalerPath:     cfg.ScalerPath,
		BaselinePath:   cfg.BaselinePath,
	}

	opts := usecase.Options{
		Metrics:   metrics,
		DriftSink: metrics,
		DriftCfg: service.DriftConfig{
			Epsilon:   cfg.DriftEpsilon,
			Threshold: cfg.DriftThreshold,
		},
	}

	if cfg.KafkaEnabled {
		publisher := messaging.NewKafkaPublisher([]string{cfg.KafkaBroker}, cfg.KafkaTopic, logger)
		defer publisher.Close()
		opts.Publisher = publisher
		logger.Info("kafka event publishing enabled", "broker", cfg.KafkaBroker, "topic", cfg.KafkaTopic)
	}

	if cfg.AuditLogPath != "" {
		auditLogger, err := audit.NewJSONLLogger(cfg.AuditLogPath)
		if err != nil {
			logger.Error("failed to open audit log", "path", cfg.AuditLogPath, "error", err)
			os.Exit(1)
		}
		defer auditLogger.Close()
		opts.Audit = auditLogger
		logger.Info("prediction audit log enabled", "path", cfg.AuditLogPath)
	}

	// Optional A/B traffic-split labeling.
	weights, err := cfg.VersionWeights()
	if err != nil {
		logger.Error("invalid MODEL_VERSIONS setting", "error", err)
		os.Exit(1)
	}
	if len(weights) > 0 {
		split, err := service.NewWeightedSplit(weights)
		if err != nil {
			logger.Error("invalid traffic split weights", "error", err)
			os.Exit(1)
		}
		opts.Split = split
	}

	// Wire the prediction use case and load serving artifacts. A failed
	// load is fatal: the process must not accept traffic.
	svc := usecase.NewPredictionService(loader, opts, logger)
	if err := svc.Load(ctx); err != nil {
		logger.Error("failed to load serving artifacts", "error", err)
		os.Exit(1)
	}

	// HTTP server.
	predictHandler := rest.NewPredictHandler(svc, metrics, logger)
	healthHandler := rest.NewHealthHandler(svc)

	mux := http.NewServeMux()
	rest.RegisterRoutes(mux, predictHandler, healthHandler, observability.Handler(registry))

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("scoring-service started",
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down scoring-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("scoring-service stopped")
}
