// Package model implements the latent autoencoder: a ReLU encoder down to a
// small linear latent space and a mirrored decoder ending in a sigmoid.
package model

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/activations"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/layer"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/net"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/opt"
)

// ErrShape reports an input, latent or gradient dimension mismatch.
var ErrShape = errors.New("shape mismatch")

// Hidden layer widths of the encoder; the decoder uses them in reverse.
const (
	Hidden1 = 256
	Hidden2 = 64
)

// NewEncoder builds inputDim→256→64→latentDim with ReLU hidden layers and a linear latent.
func NewEncoder(inputDim, latentDim int, rng *rand.Rand) *net.Network {
	return net.New(
		layer.NewDense(inputDim, Hidden1, activations.ReLU{}, rng),
		layer.NewDense(Hidden1, Hidden2, activations.ReLU{}, rng),
		layer.NewDense(Hidden2, latentDim, activations.Linear{}, rng),
	)
}

// NewDecoder builds latentDim→64→256→inputDim with a sigmoid output in (0, 1).
func NewDecoder(latentDim, inputDim int, rng *rand.Rand) *net.Network {
	return net.New(
		layer.NewDense(latentDim, Hidden2, activations.ReLU{}, rng),
		layer.NewDense(Hidden2, Hidden1, activations.ReLU{}, rng),
		layer.NewDense(Hidden1, inputDim, activations.Sigmoid{}, rng),
	)
}

// Autoencoder composes an encoder and a decoder. It exclusively owns its
// parameters; only an optimizer built over Params mutates them.
type Autoencoder struct {
	encoder   *net.Network
	decoder   *net.Network
	inputDim  int
	latentDim int
}

// New creates a randomly initialized autoencoder.
func New(inputDim, latentDim int, seed int64) (*Autoencoder, error) {
	if inputDim <= 0 || latentDim <= 0 {
		return nil, fmt.Errorf("model: input_dim %d and latent_dim %d must be > 0: %w", inputDim, latentDim, ErrShape)
	}
	rng := rand.New(rand.NewSource(seed))
	return &Autoencoder{
		encoder:   NewEncoder(inputDim, latentDim, rng),
		decoder:   NewDecoder(latentDim, inputDim, rng),
		inputDim:  inputDim,
		latentDim: latentDim,
	}, nil
}

func (a *Autoencoder) checkInput(x mat.Matrix) error {
	r, c := x.Dims()
	if r == 0 {
		return fmt.Errorf("model: empty batch: %w", ErrShape)
	}
	if c != a.inputDim {
		return fmt.Errorf("model: input has %d features, want %d: %w", c, a.inputDim, ErrShape)
	}
	return nil
}

// Forward encodes and decodes a batch, returning (reconstruction, latent).
// Parameters are not modified.
func (a *Autoencoder) Forward(x mat.Matrix) (recon, latent *mat.Dense, err error) {
	if err := a.checkInput(x); err != nil {
		return nil, nil, err
	}
	latent = a.encoder.Forward(x)
	recon = a.decoder.Forward(latent)
	return recon, latent, nil
}

// Encode maps a batch to its latent vectors only.
func (a *Autoencoder) Encode(x mat.Matrix) (*mat.Dense, error) {
	if err := a.checkInput(x); err != nil {
		return nil, err
	}
	return a.encoder.Forward(x), nil
}

// Backward propagates dL/d(recon) of the last Forward through decoder and
// encoder, accumulating gradients into Params.
func (a *Autoencoder) Backward(gradRecon mat.Matrix) error {
	if _, c := gradRecon.Dims(); c != a.inputDim {
		return fmt.Errorf("model: gradient has %d columns, want %d: %w", c, a.inputDim, ErrShape)
	}
	gradLatent := a.decoder.Backward(gradRecon)
	a.encoder.Backward(gradLatent)
	return nil
}

// Params returns encoder then decoder parameters in a stable order.
func (a *Autoencoder) Params() []opt.Param {
	var params []opt.Param
	for _, p := range a.encoder.Params() {
		p.Name = "encoder." + p.Name
		params = append(params, p)
	}
	for _, p := range a.decoder.Params() {
		p.Name = "decoder." + p.Name
		params = append(params, p)
	}
	return params
}

// InputDim returns the flattened input width.
func (a *Autoencoder) InputDim() int { return a.inputDim }

// LatentDim returns the latent width.
func (a *Autoencoder) LatentDim() int { return a.latentDim }
