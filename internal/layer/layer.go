// Package layer provides neural network layer implementations.
package layer

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/activations"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/opt"
)

// Layer is a neural network layer operating on a batch (one sample per row).
type Layer interface {
	Forward(x mat.Matrix) *mat.Dense
	Backward(grad mat.Matrix) *mat.Dense
	Params() []opt.Param
	InSize() int
	OutSize() int
}

// Dense is a fully connected layer y = act(x·Wᵀ + b).
// Backward accumulates into the gradient buffers until they are cleared,
// so several backward passes before an optimizer step sum their gradients.
type Dense struct {
	// Shape: [out, in]; row-major storage is contiguous and exposed to the optimizer.
	weights *mat.Dense
	biases  []float64
	act     activations.Activation
	outSize int
	inSize  int

	gradW *mat.Dense
	gradB []float64

	// Cached by Forward for Backward.
	input  *mat.Dense
	preAct *mat.Dense
}

// NewDense creates a new dense layer with Xavier/Glorot uniform weights drawn from rng.
func NewDense(in, out int, act activations.Activation, rng *rand.Rand) *Dense {
	weights := make([]float64, out*in)
	biases := make([]float64, out)

	scale := math.Sqrt(2.0 / (float64(in) + float64(out)))
	for i := range weights {
		weights[i] = rng.Float64()*2*scale - scale
	}
	for i := range biases {
		biases[i] = rng.Float64()*0.2 - 0.1
	}

	return &Dense{
		weights: mat.NewDense(out, in, weights),
		biases:  biases,
		act:     act,
		outSize: out,
		inSize:  in,
		gradW:   mat.NewDense(out, in, nil),
		gradB:   make([]float64, out),
	}
}

// Forward performs a forward pass over a batch of shape [n, in].
func (d *Dense) Forward(x mat.Matrix) *mat.Dense {
	n, c := x.Dims()
	if c != d.inSize {
		panic(fmt.Sprintf("Dense: input has %d columns, want %d", c, d.inSize))
	}

	d.input = mat.DenseCopyOf(x)

	pre := mat.NewDense(n, d.outSize, nil)
	pre.Mul(d.input, d.weights.T())
	for i := 0; i < n; i++ {
		floats.Add(pre.RawRowView(i), d.biases)
	}
	d.preAct = pre

	out := mat.NewDense(n, d.outSize, nil)
	out.Apply(func(_, _ int, v float64) float64 {
		return d.act.Activate(v)
	}, pre)
	return out
}

// Backward accumulates parameter gradients and returns dL/dx of shape [n, in].
func (d *Dense) Backward(grad mat.Matrix) *mat.Dense {
	if d.preAct == nil {
		panic("Dense: Backward called before Forward")
	}
	n, c := grad.Dims()
	if pn, pc := d.preAct.Dims(); n != pn || c != pc {
		panic(fmt.Sprintf("Dense: gradient is %dx%d, want %dx%d", n, c, pn, pc))
	}

	// dz = dL/dy * act'(z)
	dz := mat.NewDense(n, d.outSize, nil)
	dz.Apply(func(i, j int, v float64) float64 {
		return v * d.act.Derivative(d.preAct.At(i, j))
	}, grad)

	// dL/dW = dzᵀ·x
	var gw mat.Dense
	gw.Mul(dz.T(), d.input)
	d.gradW.Add(d.gradW, &gw)

	for i := 0; i < n; i++ {
		floats.Add(d.gradB, dz.RawRowView(i))
	}

	// dL/dx = dz·W
	gradIn := mat.NewDense(n, d.inSize, nil)
	gradIn.Mul(dz, d.weights)
	return gradIn
}

// Params returns the weight and bias parameters with their gradient buffers.
func (d *Dense) Params() []opt.Param {
	return []opt.Param{
		{Name: "weights", Value: d.weights.RawMatrix().Data, Grad: d.gradW.RawMatrix().Data},
		{Name: "biases", Value: d.biases, Grad: d.gradB},
	}
}

// Flat returns a copy of all parameters, weights first.
func (d *Dense) Flat() []float64 {
	params := make([]float64, 0, d.outSize*d.inSize+d.outSize)
	params = append(params, d.weights.RawMatrix().Data...)
	params = append(params, d.biases...)
	return params
}

// SetFlat updates weights and biases from a slice produced by Flat.
func (d *Dense) SetFlat(params []float64) error {
	nw := d.outSize * d.inSize
	if len(params) != nw+d.outSize {
		return fmt.Errorf("dense %dx%d: got %d params, want %d", d.inSize, d.outSize, len(params), nw+d.outSize)
	}
	copy(d.weights.RawMatrix().Data, params[:nw])
	copy(d.biases, params[nw:])
	return nil
}

// SetWeight sets a single weight at (row, col).
func (d *Dense) SetWeight(row, col int, val float64) {
	d.weights.Set(row, col, val)
}

// SetBias sets a single bias.
func (d *Dense) SetBias(idx int, val float64) {
	d.biases[idx] = val
}

// GetWeight gets a single weight at (row, col).
func (d *Dense) GetWeight(row, col int) float64 {
	return d.weights.At(row, col)
}

// GetBias gets a single bias.
func (d *Dense) GetBias(idx int) float64 {
	return d.biases[idx]
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int {
	return d.inSize
}

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int {
	return d.outSize
}

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Activation {
	return d.act
}
