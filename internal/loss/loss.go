// Package loss provides batch loss functions over gonum matrices.
package loss

import (
	"gonum.org/v1/gonum/mat"
)

// BackwardInPlacer is an optional interface for loss functions that support
// in-place gradient computation to avoid allocations.
type BackwardInPlacer interface {
	BackwardInPlace(yPred, yTrue mat.Matrix, grad *mat.Dense)
}

// Loss is a loss function with derivative. Rows are samples.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue mat.Matrix) float64

	// Backward computes the gradient of the loss w.r.t. prediction.
	Backward(yPred, yTrue mat.Matrix) *mat.Dense
}

// MSE (Mean Squared Error) loss, averaged over every element of the batch.
type MSE struct{}

func checkDims(name string, a, b mat.Matrix) (int, int) {
	r, c := a.Dims()
	br, bc := b.Dims()
	if r != br || c != bc {
		panic(name + ": prediction and target must have same shape")
	}
	return r, c
}

// Forward computes mean squared error: (1/n) * sum((y_pred - y_true)^2)
func (m MSE) Forward(yPred, yTrue mat.Matrix) float64 {
	r, c := checkDims("MSE", yPred, yTrue)
	if r*c == 0 {
		return 0
	}

	var diff mat.Dense
	diff.Sub(yPred, yTrue)
	var sum float64
	for i := 0; i < r; i++ {
		row := diff.RawRowView(i)
		for _, d := range row {
			sum += d * d
		}
	}
	return sum / float64(r*c)
}

// Backward computes gradient: dL/dy_pred = (2/n) * (y_pred - y_true)
func (m MSE) Backward(yPred, yTrue mat.Matrix) *mat.Dense {
	r, c := checkDims("MSE", yPred, yTrue)
	grad := mat.NewDense(r, c, nil)
	m.BackwardInPlace(yPred, yTrue, grad)
	return grad
}

// BackwardInPlace computes gradient and stores it in grad.
func (m MSE) BackwardInPlace(yPred, yTrue mat.Matrix, grad *mat.Dense) {
	r, c := checkDims("MSE", yPred, yTrue)
	checkDims("MSE", yPred, grad)
	if r*c == 0 {
		return
	}

	grad.Sub(yPred, yTrue)
	grad.Scale(2.0/float64(r*c), grad)
}
