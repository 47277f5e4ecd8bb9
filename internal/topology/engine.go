package topology

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Engine turns a point cloud into a persistence summary and scores a
// summary against a reference, one homology dimension at a time.
type Engine interface {
	Summarize(points mat.Matrix) (Summary, error)
	Distance(s Summary, dim int) (float64, error)
}

// RipsEngine is an Engine backed by Rips persistence and the
// p-Wasserstein distance.
type RipsEngine struct {
	Rips  Rips
	Order float64

	// Baseline is the reference summary distances are measured against.
	// The zero value is the empty diagram: no topological structure.
	Baseline Summary
}

// NewEngine returns a RipsEngine comparing against the empty diagram.
// An order below 1 is replaced by 1.
func NewEngine(maxEdgeLength, order float64) *RipsEngine {
	if !(order >= 1) {
		order = 1
	}
	return &RipsEngine{
		Rips:  Rips{MaxEdgeLength: maxEdgeLength},
		Order: order,
	}
}

// Summarize implements Engine.
func (e *RipsEngine) Summarize(points mat.Matrix) (Summary, error) {
	return e.Rips.Summarize(points)
}

// Distance implements Engine.
func (e *RipsEngine) Distance(s Summary, dim int) (float64, error) {
	pairs, err := s.Pairs(dim)
	if err != nil {
		return 0, err
	}
	ref, err := e.Baseline.Pairs(dim)
	if err != nil {
		return 0, err
	}
	return Wasserstein(pairs, ref, e.Order), nil
}

// Measurement is the topological complexity of one point cloud.
type Measurement struct {
	Summary Summary
	D0      float64
	D1      float64
	// Loss is the mean of D0 and D1.
	Loss float64
}

// Measure summarizes points and averages the dimension 0 and 1 distances.
func Measure(e Engine, points mat.Matrix) (Measurement, error) {
	s, err := e.Summarize(points)
	if err != nil {
		return Measurement{}, err
	}
	d0, err := e.Distance(s, Components)
	if err != nil {
		return Measurement{}, err
	}
	d1, err := e.Distance(s, Loops)
	if err != nil {
		return Measurement{}, err
	}

	m := Measurement{Summary: s, D0: d0, D1: d1, Loss: (d0 + d1) / 2}
	if math.IsNaN(m.Loss) || math.IsInf(m.Loss, 0) {
		return m, fmt.Errorf("topology loss %v: %w", m.Loss, ErrNonFinite)
	}
	return m, nil
}
