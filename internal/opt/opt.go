// Package opt provides optimization algorithms.
package opt

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Param couples a parameter slice with its gradient accumulator.
// Value and Grad alias layer storage; the optimizer mutates Value in-place.
type Param struct {
	Name  string
	Value []float64
	Grad  []float64
}

// Optimizer updates a fixed set of parameters from their accumulated gradients.
type Optimizer interface {
	// Step applies the pending gradients to the parameters.
	Step()

	// ZeroGrad clears the pending gradients.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64

	// SetLR replaces the learning rate (used by schedulers).
	SetLR(lr float64)
}

func zeroGrad(params []Param) {
	for _, p := range params {
		clear(p.Grad)
	}
}

// SGD (Stochastic Gradient Descent) optimizer.
type SGD struct {
	LearningRate float64

	params []Param
}

// NewSGD creates an SGD optimizer over params.
func NewSGD(params []Param, learningRate float64) *SGD {
	return &SGD{LearningRate: learningRate, params: params}
}

// Step updates params in-place: params = params - lr * gradients
func (s *SGD) Step() {
	for _, p := range s.params {
		floats.AddScaled(p.Value, -s.LearningRate, p.Grad)
	}
}

// ZeroGrad clears all gradients.
func (s *SGD) ZeroGrad() { zeroGrad(s.params) }

// LR returns the learning rate.
func (s *SGD) LR() float64 { return s.LearningRate }

// SetLR sets the learning rate.
func (s *SGD) SetLR(lr float64) { s.LearningRate = lr }

// Adam optimizer with bias-corrected first and second moment estimates.
type Adam struct {
	LearningRate float64
	Beta1        float64 // Exponential decay rate for first moment
	Beta2        float64 // Exponential decay rate for second moment
	Epsilon      float64 // Small constant for numerical stability

	params []Param
	m      [][]float64
	v      [][]float64
	t      int
}

// NewAdam creates a new Adam optimizer with default values.
func NewAdam(params []Param, learningRate float64) *Adam {
	a := &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		params:       params,
		m:            make([][]float64, len(params)),
		v:            make([][]float64, len(params)),
	}
	for i, p := range params {
		a.m[i] = make([]float64, len(p.Value))
		a.v[i] = make([]float64, len(p.Value))
	}
	return a
}

// Step applies one Adam update to every parameter.
func (a *Adam) Step() {
	a.t++
	c1 := 1 - math.Pow(a.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.Beta2, float64(a.t))

	for i, p := range a.params {
		m, v := a.m[i], a.v[i]
		for j, g := range p.Grad {
			m[j] = a.Beta1*m[j] + (1-a.Beta1)*g
			v[j] = a.Beta2*v[j] + (1-a.Beta2)*g*g
			mHat := m[j] / c1
			vHat := v[j] / c2
			p.Value[j] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
		}
	}
}

// ZeroGrad clears all gradients.
func (a *Adam) ZeroGrad() { zeroGrad(a.params) }

// LR returns the learning rate.
func (a *Adam) LR() float64 { return a.LearningRate }

// SetLR sets the learning rate.
func (a *Adam) SetLR(lr float64) { a.LearningRate = lr }

// Steps returns the number of updates applied so far.
func (a *Adam) Steps() int { return a.t }
