// Package artifact loads the serving artifacts produced by the offline
// training pipeline: a serialized classifier, a fitted feature scaler, and
// an optional drift baseline. Classifier and scaler are mandatory; their
// absence or corruption is a fatal startup error.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fraudguard/scoring-service/internal/domain/model"
	"github.com/fraudguard/scoring-service/internal/domain/service"
)

// Loader implements usecase.ArtifactSource over fixed filesystem paths.
type Loader struct {
	ClassifierPath string
	ScalerPath     string
	BaselinePath   string
}

// classifierFile is the on-disk classifier schema.
type classifierFile struct {
	ModelVersion string     `json:"model_version"`
	Type         string     `json:"type"`
	FeatureOrder []string   `json:"feature_order"`
	Intercept    float64    `json:"intercept"`
	Coefficients []float64  `json:"coefficients"`
	Trees        []treeFile `json:"trees"`
}

type treeFile struct {
	Nodes []nodeFile `json:"nodes"`
}

type nodeFile struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
	Leaf      bool    `json:"leaf"`
}

// LoadClassifier reads and validates the classifier artifact. The artifact
// must declare the exact canonical feature order; the classifier is
// order-sensitive and a mismatch here would silently misassign features.
func (l *Loader) LoadClassifier() (service.Classifier, string, error) {
	data, err := os.ReadFile(l.ClassifierPath)
	if err != nil {
		return nil, "", fmt.Errorf("reading classifier artifact %s: %w", l.ClassifierPath, err)
	}

	var file classifierFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, "", fmt.Errorf("parsing classifier artifact %s: %w", l.ClassifierPath, err)
	}

	if err := validateFeatureOrder(file.FeatureOrder); err != nil {
		return nil, "", fmt.Errorf("classifier artifact %s: %w", l.ClassifierPath, err)
	}

	version := file.ModelVersion
	if version == "" {
		version = "v1.0"
	}

	switch file.Type {
	case "logistic_regression":
		if len(file.Coefficients) != model.NumFeatures() {
			return nil, "", fmt.Errorf("classifier artifact %s: expected %d coefficients, got %d",
				l.ClassifierPath, model.NumFeatures(), len(file.Coefficients))
		}
		m, err := service.NewLogisticModel(file.Intercept, file.Coefficients)
		if err != nil {
			return nil, "", fmt.Errorf("classifier artifact %s: %w", l.ClassifierPath, err)
		}
		return m, version, nil

	case "random_forest":
		trees := make([]service.Tree, 0, len(file.Trees))
		for _, t := range file.Trees {
			nodes := make([]service.TreeNode, 0, len(t.Nodes))
			for _, n := range t.Nodes {
				nodes = append(nodes, service.TreeNode{
					Feature:   n.Feature,
					Threshold: n.Threshold,
					Left:      n.Left,
					Right:     n.Right,
					LeafValue: n.Value,
					Leaf:      n.Leaf,
				})
			}
			trees = append(trees, service.Tree{Nodes: nodes})
		}
		m, err := service.NewForestModel(trees, model.NumFeatures())
		if err != nil {
			return nil, "", fmt.Errorf("classifier artifact %s: %w", l.ClassifierPath, err)
		}
		return m, version, nil

	default:
		return nil, "", fmt.Errorf("classifier artifact %s: unsupported model type %q", l.ClassifierPath, file.Type)
	}
}

// validateFeatureOrder requires the artifact to carry the exact canonical
// column order: Time, V1..V28, Amount.
func validateFeatureOrder(order []string) error {
	want := model.FeatureOrder()
	if len(order) != len(want) {
		return fmt.Errorf("feature_order has %d columns, want %d", len(order), len(want))
	}
	for i, name := range want {
		if order[i] != name {
			return fmt.Errorf("feature_order[%d] is %q, want %q", i, order[i], name)
		}
	}
	return nil
}

// scalerFile is the on-disk scaler schema: the fitted center/scale pairs
// exported from the offline RobustScaler.
type scalerFile struct {
	Fields []scalerField `json:"fields"`
}

type scalerField struct {
	Name   string  `json:"name"`
	Center float64 `json:"center"`
	Scale  float64 `json:"scale"`
}

// LoadScaler reads and validates the scaler artifact.
func (l *Loader) LoadScaler() (*service.FeatureScaler, error) {
	data, err := os.ReadFile(l.ScalerPath)
	if err != nil {
		return nil, fmt.Errorf("reading scaler artifact %s: %w", l.ScalerPath, err)
	}

	var file scalerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing scaler artifact %s: %w", l.ScalerPath, err)
	}

	params := make(map[string]service.ScaleParams, len(file.Fields))
	for _, f := range file.Fields {
		params[f.Name] = service.ScaleParams{Center: f.Center, Scale: f.Scale}
	}

	scaler, err := service.NewFeatureScaler(params)
	if err != nil {
		return nil, fmt.Errorf("scaler artifact %s: %w", l.ScalerPath, err)
	}
	return scaler, nil
}

// baselineFile is the on-disk drift baseline schema.
type baselineFile struct {
	Fields map[string]baselineField `yaml:"fields"`
}

type baselineField struct {
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
}

// LoadBaseline reads the drift baseline. A missing file is not an error;
// it returns nil and drift scoring stays disabled.
func (l *Loader) LoadBaseline() (map[string]service.FieldBaseline, error) {
	if l.BaselinePath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(l.BaselinePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading baseline artifact %s: %w", l.BaselinePath, err)
	}

	var file baselineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing baseline artifact %s: %w", l.BaselinePath, err)
	}

	baseline := make(map[string]service.FieldBaseline, len(file.Fields))
	for name, f := range file.Fields {
		baseline[name] = service.FieldBaseline{Mean: f.Mean, Std: f.Std}
	}
	return baseline, nil
}
