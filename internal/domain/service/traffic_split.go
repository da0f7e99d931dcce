package service

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
)

// TrafficSplit decides which model version label a request is attributed
// to. This is cosmetic A/B traffic labeling made before inference; the
// classifier itself stays deterministic.
type TrafficSplit interface {
	Assign() string
}

// StaticSplit attributes every request to a single model version.
type StaticSplit struct {
	version string
}

// NewStaticSplit creates a StaticSplit for the given version label.
func NewStaticSplit(version string) *StaticSplit {
	return &StaticSplit{version: version}
}

// Assign returns the configured version label.
func (s *StaticSplit) Assign() string {
	return s.version
}

// WeightedSplit attributes requests to version labels at random, in
// proportion to the configured weights.
type WeightedSplit struct {
	versions   []string
	cumWeights []float64
	total      float64
}

// NewWeightedSplit creates a WeightedSplit from version weights. Weights
// must be positive; they need not sum to one. Versions are ordered by name
// so the assignment distribution is independent of map iteration order.
func NewWeightedSplit(weights map[string]float64) (*WeightedSplit, error) {
	if len(weights) == 0 {
		return nil, errors.New("traffic split requires at least one version")
	}

	versions := make([]string, 0, len(weights))
	for v := range weights {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	cum := make([]float64, 0, len(versions))
	var total float64
	for _, v := range versions {
		w := weights[v]
		if w <= 0 {
			return nil, fmt.Errorf("traffic split weight for %s must be positive", v)
		}
		total += w
		cum = append(cum, total)
	}

	return &WeightedSplit{versions: versions, cumWeights: cum, total: total}, nil
}

// Assign picks a version label by weighted random draw.
func (s *WeightedSplit) Assign() string {
	r := rand.Float64() * s.total
	for i, c := range s.cumWeights {
		if r < c {
			return s.versions[i]
		}
	}
	return s.versions[len(s.versions)-1]
}

// Versions returns the version labels in assignment order.
func (s *WeightedSplit) Versions() []string {
	out := make([]string, len(s.versions))
	copy(out, s.versions)
	return out
}
