package service

import (
	"log/slog"
	"math"
)

const (
	// DefaultDriftEpsilon guards the z-score division when a baseline field
	// has zero standard deviation.
	DefaultDriftEpsilon = 1e-7

	// DefaultDriftThreshold is the aggregate z-score above which drift is
	// flagged.
	DefaultDriftThreshold = 3.0
)

// FieldBaseline is the reference distribution for one feature column.
type FieldBaseline struct {
	Mean float64
	Std  float64
}

// DriftSink publishes drift scores to an external metrics backend. Sinks
// are best-effort: a failing sink never fails the scoring call.
type DriftSink interface {
	PublishFieldScore(field string, score float64) error
	PublishAggregate(score float64, detected bool) error
}

// DriftConfig tunes the drift scorer.
type DriftConfig struct {
	Epsilon   float64
	Threshold float64
}

// DriftScorer computes a standardized deviation of incoming raw features
// from a fixed baseline distribution. It is stateless across requests;
// the baseline is read-only after construction.
type DriftScorer struct {
	baseline  map[string]FieldBaseline
	epsilon   float64
	threshold float64
	sink      DriftSink
	logger    *slog.Logger
}

// NewDriftScorer builds a DriftScorer over the given baseline. The sink is
// optional. Zero config values fall back to the package defaults.
func NewDriftScorer(baseline map[string]FieldBaseline, cfg DriftConfig, sink DriftSink, logger *slog.Logger) *DriftScorer {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultDriftEpsilon
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultDriftThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	copied := make(map[string]FieldBaseline, len(baseline))
	for field, b := range baseline {
		copied[field] = b
	}
	return &DriftScorer{
		baseline:  copied,
		epsilon:   cfg.Epsilon,
		threshold: cfg.Threshold,
		sink:      sink,
		logger:    logger,
	}
}

// Score computes per-field z-scores z = |value - mean| / (std + epsilon)
// for every field present in both the input and the baseline, and returns
// their arithmetic mean together with a flag set when the mean exceeds the
// threshold. An input with no baseline-covered fields scores 0.0.
func (d *DriftScorer) Score(features map[string]float64) (float64, bool) {
	var sum float64
	var count int

	for field, value := range features {
		ref, ok := d.baseline[field]
		if !ok {
			continue
		}
		z := math.Abs(value-ref.Mean) / (ref.Std + d.epsilon)
		sum += z
		count++

		if d.sink != nil {
			if err := d.sink.PublishFieldScore(field, z); err != nil {
				d.logger.Warn("drift sink publish failed", "field", field, "error", err)
			}
		}
	}

	if count == 0 {
		return 0.0, false
	}

	aggregate := sum / float64(count)
	detected := aggregate > d.threshold

	if d.sink != nil {
		if err := d.sink.PublishAggregate(aggregate, detected); err != nil {
			d.logger.Warn("drift sink publish failed", "error", err)
		}
	}

	return aggregate, detected
}

// Threshold returns the configured drift threshold.
func (d *DriftScorer) Threshold() float64 {
	return d.threshold
}
