// Package activations provides element-wise activation functions.
package activations

import "math"

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x) from the pre-activation value x.
	Derivative(x float64) float64
}

// ReLU activation function.
type ReLU struct{}

// Activate computes max(0, x)
func (r ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Derivative returns 1 if x > 0, else 0
func (r ReLU) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// Sigmoid activation function. Its range (0, 1) matches normalized pixel intensities.
type Sigmoid struct{}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Activate computes sigmoid(x)
func (s Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (s Sigmoid) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 - sigma)
}

// Linear is the identity activation, used for the latent projection.
type Linear struct{}

// Activate returns x.
func (l Linear) Activate(x float64) float64 {
	return x
}

// Derivative returns 1.
func (l Linear) Derivative(x float64) float64 {
	return 1
}

// Name returns the serialized name of an activation.
// Unknown activations report "Linear".
func Name(act Activation) string {
	switch act.(type) {
	case ReLU:
		return "ReLU"
	case Sigmoid:
		return "Sigmoid"
	default:
		return "Linear"
	}
}

// ByName resolves a serialized activation name.
func ByName(name string) (Activation, bool) {
	switch name {
	case "ReLU":
		return ReLU{}, true
	case "Sigmoid":
		return Sigmoid{}, true
	case "Linear":
		return Linear{}, true
	default:
		return nil, false
	}
}
