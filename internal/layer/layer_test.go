// Package layer provides unit tests for neural network layers.
package layer

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/activations"
)

func newTestDense(in, out int, act activations.Activation) *Dense {
	return NewDense(in, out, act, rand.New(rand.NewSource(1)))
}

// TestDenseForward tests a forward pass with identity weights.
func TestDenseForward(t *testing.T) {
	d := newTestDense(2, 2, activations.Sigmoid{})

	d.SetWeight(0, 0, 1.0)
	d.SetWeight(0, 1, 0.0)
	d.SetWeight(1, 0, 0.0)
	d.SetWeight(1, 1, 1.0)
	d.SetBias(0, 0.0)
	d.SetBias(1, 0.0)

	// Two samples in one batch
	x := mat.NewDense(2, 2, []float64{1, 2, -1, 0})
	out := d.Forward(x)

	s := activations.Sigmoid{}
	expected := [][]float64{{s.Activate(1), s.Activate(2)}, {s.Activate(-1), s.Activate(0)}}
	for i := range expected {
		for j := range expected[i] {
			if math.Abs(out.At(i, j)-expected[i][j]) > 1e-12 {
				t.Errorf("output(%d,%d) = %v, want %v", i, j, out.At(i, j), expected[i][j])
			}
		}
	}
}

// TestDenseForwardBias tests that biases are added per output column.
func TestDenseForwardBias(t *testing.T) {
	d := newTestDense(1, 2, activations.Linear{})
	d.SetWeight(0, 0, 2)
	d.SetWeight(1, 0, -1)
	d.SetBias(0, 0.5)
	d.SetBias(1, 1)

	out := d.Forward(mat.NewDense(1, 1, []float64{3}))
	if out.At(0, 0) != 6.5 || out.At(0, 1) != -2 {
		t.Errorf("output = %v, want [6.5 -2]", mat.Formatted(out))
	}
}

// TestDenseForwardShapePanics tests that a wrong input width panics.
func TestDenseForwardShapePanics(t *testing.T) {
	d := newTestDense(3, 2, activations.ReLU{})

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for input width mismatch")
		}
	}()

	d.Forward(mat.NewDense(1, 2, nil))
}

// TestDenseBackwardNumeric checks every gradient against central differences
// of L = sum(y * g) for a fixed upstream gradient g.
func TestDenseBackwardNumeric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	d := NewDense(3, 2, activations.Sigmoid{}, rng)
	x := mat.NewDense(4, 3, nil)
	x.Apply(func(_, _ int, _ float64) float64 { return rng.NormFloat64() }, x)
	g := mat.NewDense(4, 2, []float64{1, -0.5, 0.3, 2, -1, 0.1, 0.7, 0.7})

	lossAt := func(in mat.Matrix) float64 {
		return mat.Sum(mulElem(d.Forward(in), g))
	}

	d.Forward(x)
	gradIn := d.Backward(g)
	settings := &fd.Settings{Formula: fd.Central}

	for _, p := range d.Params() {
		orig := append([]float64(nil), p.Value...)
		numeric := fd.Gradient(nil, func(v []float64) float64 {
			copy(p.Value, v)
			return lossAt(x)
		}, orig, settings)
		copy(p.Value, orig)

		for k := range numeric {
			if math.Abs(p.Grad[k]-numeric[k]) > 1e-6 {
				t.Errorf("%s[%d]: grad = %v, numeric %v", p.Name, k, p.Grad[k], numeric[k])
			}
		}
	}

	x0 := append([]float64(nil), x.RawMatrix().Data...)
	numeric := fd.Gradient(nil, func(v []float64) float64 {
		return lossAt(mat.NewDense(4, 3, v))
	}, x0, settings)
	for k, want := range numeric {
		i, j := k/3, k%3
		if math.Abs(gradIn.At(i, j)-want) > 1e-6 {
			t.Errorf("dx(%d,%d) = %v, numeric %v", i, j, gradIn.At(i, j), want)
		}
	}
}

func mulElem(a, b mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.MulElem(a, b)
	return &out
}

// TestDenseBackwardAccumulates tests that two backward passes sum their gradients.
func TestDenseBackwardAccumulates(t *testing.T) {
	d := newTestDense(2, 2, activations.Linear{})
	x := mat.NewDense(1, 2, []float64{1, 2})
	g := mat.NewDense(1, 2, []float64{1, 1})

	d.Forward(x)
	d.Backward(g)
	once := append([]float64(nil), d.Params()[0].Grad...)

	d.Forward(x)
	d.Backward(g)
	twice := d.Params()[0].Grad

	for i := range once {
		if math.Abs(twice[i]-2*once[i]) > 1e-12 {
			t.Errorf("grad[%d] = %v after two passes, want %v", i, twice[i], 2*once[i])
		}
	}
}

// TestDenseBackwardBeforeForwardPanics tests the missing-cache guard.
func TestDenseBackwardBeforeForwardPanics(t *testing.T) {
	d := newTestDense(2, 2, activations.ReLU{})

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for Backward before Forward")
		}
	}()

	d.Backward(mat.NewDense(1, 2, nil))
}

// TestDenseParamsAlias tests that Params exposes live storage.
func TestDenseParamsAlias(t *testing.T) {
	d := newTestDense(3, 2, activations.ReLU{})

	params := d.Params()
	if len(params) != 2 {
		t.Fatalf("len(Params()) = %d, want 2", len(params))
	}
	if len(params[0].Value) != 6 || len(params[1].Value) != 2 {
		t.Errorf("param sizes = %d, %d, want 6, 2", len(params[0].Value), len(params[1].Value))
	}

	params[0].Value[1] = 42
	if d.GetWeight(0, 1) != 42 {
		t.Errorf("GetWeight(0,1) = %v, want 42", d.GetWeight(0, 1))
	}
	params[1].Value[1] = -3
	if d.GetBias(1) != -3 {
		t.Errorf("GetBias(1) = %v, want -3", d.GetBias(1))
	}
}

// TestDenseFlatRoundTrip tests Flat and SetFlat.
func TestDenseFlatRoundTrip(t *testing.T) {
	src := newTestDense(3, 2, activations.ReLU{})
	dst := NewDense(3, 2, activations.ReLU{}, rand.New(rand.NewSource(99)))

	if err := dst.SetFlat(src.Flat()); err != nil {
		t.Fatalf("SetFlat: %v", err)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if dst.GetWeight(i, j) != src.GetWeight(i, j) {
				t.Errorf("weight(%d,%d) = %v, want %v", i, j, dst.GetWeight(i, j), src.GetWeight(i, j))
			}
		}
		if dst.GetBias(i) != src.GetBias(i) {
			t.Errorf("bias(%d) = %v, want %v", i, dst.GetBias(i), src.GetBias(i))
		}
	}

	if err := dst.SetFlat(make([]float64, 3)); err == nil {
		t.Error("SetFlat should reject a short slice")
	}
}

// TestDenseInSizeAndOutSize tests dimension getters.
func TestDenseInSizeAndOutSize(t *testing.T) {
	d := newTestDense(10, 5, activations.ReLU{})

	if d.InSize() != 10 {
		t.Errorf("InSize() = %d, want 10", d.InSize())
	}
	if d.OutSize() != 5 {
		t.Errorf("OutSize() = %d, want 5", d.OutSize())
	}
	if _, ok := d.Activation().(activations.ReLU); !ok {
		t.Errorf("Activation() is not ReLU")
	}
}
