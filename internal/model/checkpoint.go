package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/net"
)

const checkpointMagic = "toponeuron/autoencoder/v1"

// Meta describes the training state a checkpoint was taken at.
type Meta struct {
	RunID string
	Epoch int
	Loss  float64
}

type header struct {
	Magic     string
	InputDim  int
	LatentDim int
	Meta      Meta
}

// Save saves the model to a file using gob encoding.
// The optimizer state is not saved.
func (a *Autoencoder) Save(filename string, meta Meta) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := a.Write(file, meta); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Write writes the model to w.
func (a *Autoencoder) Write(w io.Writer, meta Meta) error {
	enc := gob.NewEncoder(w)
	h := header{Magic: checkpointMagic, InputDim: a.inputDim, LatentDim: a.latentDim, Meta: meta}
	if err := enc.Encode(h); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if err := a.encoder.Encode(enc); err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	if err := a.decoder.Encode(enc); err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	return nil
}

// Load loads a model saved by Save.
func Load(filename string) (*Autoencoder, Meta, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return Read(file)
}

// Read reads a model written by Write and validates its architecture.
func Read(r io.Reader) (*Autoencoder, Meta, error) {
	dec := gob.NewDecoder(r)

	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, Meta{}, fmt.Errorf("failed to read header: %w", err)
	}
	if h.Magic != checkpointMagic {
		return nil, Meta{}, fmt.Errorf("not an autoencoder checkpoint (magic %q)", h.Magic)
	}

	encoder, err := net.Decode(dec)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("encoder: %w", err)
	}
	decoder, err := net.Decode(dec)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("decoder: %w", err)
	}

	if encoder.InSize() != h.InputDim || encoder.OutSize() != h.LatentDim ||
		decoder.InSize() != h.LatentDim || decoder.OutSize() != h.InputDim {
		return nil, Meta{}, fmt.Errorf("checkpoint layers do not match %d→%d→%d: %w", h.InputDim, h.LatentDim, h.InputDim, ErrShape)
	}

	return &Autoencoder{
		encoder:   encoder,
		decoder:   decoder,
		inputDim:  h.InputDim,
		latentDim: h.LatentDim,
	}, h.Meta, nil
}
