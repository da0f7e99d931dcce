package service

import (
	"errors"
	"fmt"
	"math"
)

// ErrModelNotLoaded indicates the classifier was invoked before its
// trained parameters were initialized.
var ErrModelNotLoaded = errors.New("classifier model not loaded")

// InferenceError indicates the submitted feature vector does not match the
// shape the model was trained on.
type InferenceError struct {
	Want int
	Got  int
}

// Error implements the error interface.
func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: expected feature vector of width %d, got %d", e.Want, e.Got)
}

// Prediction is the outcome of a single inference call.
type Prediction struct {
	Label       int
	Probability float64
}

// Classifier produces a binary label and class-1 probability for an ordered
// numeric feature vector. Implementations are deterministic for a fixed
// model and input; no randomness is permitted at inference time.
type Classifier interface {
	Predict(vector []float64) (Prediction, error)
}

// LogisticModel is a trained logistic regression classifier.
type LogisticModel struct {
	intercept    float64
	coefficients []float64
}

// NewLogisticModel builds a LogisticModel from trained parameters.
func NewLogisticModel(intercept float64, coefficients []float64) (*LogisticModel, error) {
	if len(coefficients) == 0 {
		return nil, errors.New("logistic model requires at least one coefficient")
	}
	copied := make([]float64, len(coefficients))
	copy(copied, coefficients)
	return &LogisticModel{intercept: intercept, coefficients: copied}, nil
}

// Predict computes sigmoid(intercept + w . x). The label is 1 when the
// class-1 probability is at least 0.5, matching the trainer's decision rule.
func (m *LogisticModel) Predict(vector []float64) (Prediction, error) {
	if m == nil {
		return Prediction{}, ErrModelNotLoaded
	}
	if len(vector) != len(m.coefficients) {
		return Prediction{}, &InferenceError{Want: len(m.coefficients), Got: len(vector)}
	}

	z := m.intercept
	for i, w := range m.coefficients {
		z += w * vector[i]
	}
	p := 1.0 / (1.0 + math.Exp(-z))

	label := 0
	if p >= 0.5 {
		label = 1
	}
	return Prediction{Label: label, Probability: p}, nil
}

// TreeNode is one node of a decision tree. Internal nodes route on
// vector[Feature] <= Threshold; leaves carry the class-1 fraction of the
// training samples that reached them.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	LeafValue float64
	Leaf      bool
}

// Tree is a single decision tree evaluated by index-based traversal from
// node 0.
type Tree struct {
	Nodes []TreeNode
}

// ForestModel is a trained random forest: the class-1 probability is the
// mean of the per-tree leaf values.
type ForestModel struct {
	trees       []Tree
	numFeatures int
}

// NewForestModel builds a ForestModel after validating every node's feature
// and child indices, so traversal at inference time cannot step out of
// bounds.
func NewForestModel(trees []Tree, numFeatures int) (*ForestModel, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest model requires at least one tree")
	}
	if numFeatures <= 0 {
		return nil, errors.New("forest model requires a positive feature count")
	}
	for ti, tree := range trees {
		if len(tree.Nodes) == 0 {
			return nil, fmt.Errorf("tree %d has no nodes", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Leaf {
				continue
			}
			if node.Feature < 0 || node.Feature >= numFeatures {
				return nil, fmt.Errorf("tree %d node %d: feature index %d out of range", ti, ni, node.Feature)
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) || node.Right < 0 || node.Right >= len(tree.Nodes) {
				return nil, fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
		}
	}
	return &ForestModel{trees: trees, numFeatures: numFeatures}, nil
}

// Predict averages the leaf values reached across all trees.
func (m *ForestModel) Predict(vector []float64) (Prediction, error) {
	if m == nil {
		return Prediction{}, ErrModelNotLoaded
	}
	if len(vector) != m.numFeatures {
		return Prediction{}, &InferenceError{Want: m.numFeatures, Got: len(vector)}
	}

	var sum float64
	for _, tree := range m.trees {
		node := tree.Nodes[0]
		for !node.Leaf {
			if vector[node.Feature] <= node.Threshold {
				node = tree.Nodes[node.Left]
			} else {
				node = tree.Nodes[node.Right]
			}
		}
		sum += node.LeafValue
	}
	p := sum / float64(len(m.trees))

	label := 0
	if p >= 0.5 {
		label = 1
	}
	return Prediction{Label: label, Probability: p}, nil
}
