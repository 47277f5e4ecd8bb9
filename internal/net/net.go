// Package net provides the layer stack shared by the encoder and decoder.
package net

import (
	"encoding/gob"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/activations"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/layer"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/opt"
)

// Network is an ordered collection of layers that can be forwarded and backwarded.
type Network struct {
	layers []layer.Layer
}

// New creates a new network from the given layers.
func New(layers ...layer.Layer) *Network {
	return &Network{layers: layers}
}

// Forward performs a forward pass through all layers.
func (n *Network) Forward(x mat.Matrix) *mat.Dense {
	curr := x
	var out *mat.Dense
	for i := range n.layers {
		out = n.layers[i].Forward(curr)
		curr = out
	}
	if out == nil {
		return mat.DenseCopyOf(x)
	}
	return out
}

// Backward performs a backward pass through all layers and returns dL/dx.
func (n *Network) Backward(grad mat.Matrix) *mat.Dense {
	curr := grad
	var out *mat.Dense
	for i := len(n.layers) - 1; i >= 0; i-- {
		out = n.layers[i].Backward(curr)
		curr = out
	}
	if out == nil {
		return mat.DenseCopyOf(grad)
	}
	return out
}

// Params returns every layer's parameters in layer order.
func (n *Network) Params() []opt.Param {
	var params []opt.Param
	for i, l := range n.layers {
		for _, p := range l.Params() {
			p.Name = fmt.Sprintf("%d.%s", i, p.Name)
			params = append(params, p)
		}
	}
	return params
}

// NumParams returns the total number of scalar parameters.
func (n *Network) NumParams() int {
	total := 0
	for _, p := range n.Params() {
		total += len(p.Value)
	}
	return total
}

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// InSize returns the input width of the first layer, or 0 for an empty network.
func (n *Network) InSize() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[0].InSize()
}

// OutSize returns the output width of the last layer, or 0 for an empty network.
func (n *Network) OutSize() int {
	if len(n.layers) == 0 {
		return 0
	}
	return n.layers[len(n.layers)-1].OutSize()
}

// LayerConfig holds the configuration needed to reconstruct a layer.
type LayerConfig struct {
	Type       string
	InSize     int
	OutSize    int
	Activation string
	Params     []float64
}

// ExtractLayerConfig extracts the configuration from a layer.
func ExtractLayerConfig(l layer.Layer) (LayerConfig, error) {
	dense, ok := l.(*layer.Dense)
	if !ok {
		return LayerConfig{}, fmt.Errorf("unsupported layer type: %T", l)
	}
	return LayerConfig{
		Type:       "Dense",
		InSize:     dense.InSize(),
		OutSize:    dense.OutSize(),
		Activation: activations.Name(dense.Activation()),
		Params:     dense.Flat(),
	}, nil
}

// CreateLayer creates a new layer from the configuration.
func (c *LayerConfig) CreateLayer() (layer.Layer, error) {
	if c.Type != "Dense" {
		return nil, fmt.Errorf("unsupported layer type: %s", c.Type)
	}
	act, ok := activations.ByName(c.Activation)
	if !ok {
		return nil, fmt.Errorf("unsupported activation: %s", c.Activation)
	}

	if c.InSize <= 0 || c.OutSize <= 0 {
		return nil, fmt.Errorf("invalid dense shape %dx%d", c.InSize, c.OutSize)
	}
	n := len(c.Params)
	if c.InSize > n || c.OutSize > n || c.InSize*c.OutSize+c.OutSize != n {
		return nil, fmt.Errorf("dense %dx%d needs %d params, got %d", c.InSize, c.OutSize, c.InSize*c.OutSize+c.OutSize, n)
	}

	// Initial values are overwritten by SetFlat.
	dense := layer.NewDense(c.InSize, c.OutSize, act, rand.New(rand.NewSource(0)))
	if err := dense.SetFlat(c.Params); err != nil {
		return nil, err
	}
	return dense, nil
}

// Encode writes the layer count followed by each layer configuration.
func (n *Network) Encode(enc *gob.Encoder) error {
	if err := enc.Encode(int32(len(n.layers))); err != nil {
		return fmt.Errorf("failed to encode layer count: %w", err)
	}
	for i, l := range n.layers {
		cfg, err := ExtractLayerConfig(l)
		if err != nil {
			return err
		}
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode layer %d: %w", i, err)
		}
	}
	return nil
}

// MaxLayers bounds the layer count accepted by Decode.
const MaxLayers = 1024

// Decode reads a network written by Encode.
func Decode(dec *gob.Decoder) (*Network, error) {
	var numLayers int32
	if err := dec.Decode(&numLayers); err != nil {
		return nil, fmt.Errorf("failed to read layer count: %w", err)
	}
	if numLayers < 0 || numLayers > MaxLayers {
		return nil, fmt.Errorf("invalid layer count %d", numLayers)
	}

	var layers []layer.Layer
	for i := 0; i < int(numLayers); i++ {
		var cfg LayerConfig
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read layer %d: %w", i, err)
		}
		l, err := cfg.CreateLayer()
		if err != nil {
			return nil, fmt.Errorf("failed to create layer %d: %w", i, err)
		}
		layers = append(layers, l)
	}
	return New(layers...), nil
}
