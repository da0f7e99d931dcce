package service

import (
	"errors"
	"fmt"

	"github.com/fraudguard/scoring-service/internal/domain/model"
)

// ErrScalerNotLoaded indicates the feature scaler was invoked before its
// fitted parameters were initialized.
var ErrScalerNotLoaded = errors.New("feature scaler not loaded")

// ScaleParams holds the fitted linear transform for one feature column:
// scaled = (value - Center) / Scale.
type ScaleParams struct {
	Center float64
	Scale  float64
}

// FeatureScaler applies transforms fitted offline to a fixed subset of
// feature columns (Amount and Time) while passing every other column
// through unchanged. Parameters are fixed at load time and never refit
// at request time, so the scaler is safe for concurrent use.
type FeatureScaler struct {
	params map[string]ScaleParams
}

// NewFeatureScaler builds a FeatureScaler from fitted per-field parameters.
func NewFeatureScaler(params map[string]ScaleParams) (*FeatureScaler, error) {
	if len(params) == 0 {
		return nil, errors.New("scaler parameters are required")
	}
	copied := make(map[string]ScaleParams, len(params))
	for field, p := range params {
		if p.Scale == 0 {
			return nil, fmt.Errorf("scaler parameters for %s: scale must be non-zero", field)
		}
		copied[field] = p
	}
	return &FeatureScaler{params: copied}, nil
}

// Transform maps a validated transaction to the ordered numeric vector the
// classifier consumes: Time, V1..V28, Amount, with Time and Amount replaced
// by their scaled values.
func (s *FeatureScaler) Transform(tx *model.Transaction) ([]float64, error) {
	if s == nil || s.params == nil {
		return nil, ErrScalerNotLoaded
	}

	vector := make([]float64, 0, model.NumFeatures())
	for _, name := range model.FeatureOrder() {
		value := tx.Value(name)
		if p, ok := s.params[name]; ok {
			value = (value - p.Center) / p.Scale
		}
		vector = append(vector, value)
	}
	return vector, nil
}

// ScaledFields returns the names of the columns this scaler transforms.
func (s *FeatureScaler) ScaledFields() []string {
	fields := make([]string, 0, len(s.params))
	for _, name := range model.FeatureOrder() {
		if _, ok := s.params[name]; ok {
			fields = append(fields, name)
		}
	}
	return fields
}
