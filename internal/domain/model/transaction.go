package model

import (
	"fmt"
	"strings"
)

const (
	// FeatureTime is the elapsed-time feature column.
	FeatureTime = "Time"

	// FeatureAmount is the transaction amount column.
	FeatureAmount = "Amount"

	// NumAnonymized is the number of anonymized V1..V28 features.
	NumAnonymized = 28
)

// featureOrder is the canonical column order the classifier was trained on:
// Time, V1..V28, Amount. The classifier consumes a fixed-width numeric
// vector, so this order is a hard invariant.
var featureOrder = buildFeatureOrder()

func buildFeatureOrder() []string {
	order := make([]string, 0, NumAnonymized+2)
	order = append(order, FeatureTime)
	for i := 1; i <= NumAnonymized; i++ {
		order = append(order, fmt.Sprintf("V%d", i))
	}
	order = append(order, FeatureAmount)
	return order
}

// FeatureOrder returns a copy of the canonical feature column order.
func FeatureOrder() []string {
	out := make([]string, len(featureOrder))
	copy(out, featureOrder)
	return out
}

// NumFeatures returns the fixed width of the feature vector.
func NumFeatures() int {
	return len(featureOrder)
}

// SchemaError reports a malformed transaction record: fields that are
// absent and fields whose values are not usable numbers.
type SchemaError struct {
	Missing []string
	Invalid []string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing fields: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, fmt.Sprintf("invalid fields: %s", strings.Join(e.Invalid, ", ")))
	}
	if len(parts) == 0 {
		return "invalid transaction record"
	}
	return "invalid transaction record: " + strings.Join(parts, "; ")
}

// Transaction is an immutable, validated transaction record holding exactly
// the 30 named numeric features. It is created per request and discarded
// after the response is produced.
type Transaction struct {
	features map[string]float64
}

// NewTransaction validates a raw field mapping (typically a decoded JSON
// object) and builds a Transaction. All 30 canonical fields must be present
// and numeric, and the amount must be non-negative. Unknown extra fields are
// ignored for forward compatibility. On failure it returns a *SchemaError
// listing every offending field.
func NewTransaction(raw map[string]any) (*Transaction, error) {
	schemaErr := &SchemaError{}
	features := make(map[string]float64, len(featureOrder))

	for _, name := range featureOrder {
		value, ok := raw[name]
		if !ok {
			schemaErr.Missing = append(schemaErr.Missing, name)
			continue
		}
		f, ok := asFloat(value)
		if !ok {
			schemaErr.Invalid = append(schemaErr.Invalid, name)
			continue
		}
		features[name] = f
	}

	if amount, ok := features[FeatureAmount]; ok && amount < 0 {
		schemaErr.Invalid = append(schemaErr.Invalid, FeatureAmount)
	}

	if len(schemaErr.Missing) > 0 || len(schemaErr.Invalid) > 0 {
		return nil, schemaErr
	}

	return &Transaction{features: features}, nil
}

// asFloat converts a decoded JSON value to float64. encoding/json decodes
// numbers as float64; integer types are accepted for callers constructing
// maps directly.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Value returns the value of a named feature.
func (t *Transaction) Value(name string) float64 {
	return t.features[name]
}

// Amount returns the transaction amount.
func (t *Transaction) Amount() float64 {
	return t.features[FeatureAmount]
}

// ElapsedTime returns the elapsed-time feature.
func (t *Transaction) ElapsedTime() float64 {
	return t.features[FeatureTime]
}

// Features returns a copy of the raw feature mapping.
func (t *Transaction) Features() map[string]float64 {
	out := make(map[string]float64, len(t.features))
	for k, v := range t.features {
		out[k] = v
	}
	return out
}
