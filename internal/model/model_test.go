package model

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/loss"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/opt"
)

func randomBatch(rng *rand.Rand, n, dim int) *mat.Dense {
	x := mat.NewDense(n, dim, nil)
	x.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() }, x)
	return x
}

func newModel(t *testing.T, inputDim, latentDim int) *Autoencoder {
	t.Helper()
	m, err := New(inputDim, latentDim, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

// TestForwardShapes tests that reconstructions match the input shape and
// latents have exactly latent_dim columns.
func TestForwardShapes(t *testing.T) {
	tests := []struct {
		batch, inputDim, latentDim int
	}{
		{1, 784, 8},
		{16, 784, 8},
		{5, 20, 3},
	}

	for _, tt := range tests {
		m := newModel(t, tt.inputDim, tt.latentDim)
		x := randomBatch(rand.New(rand.NewSource(2)), tt.batch, tt.inputDim)

		recon, latent, err := m.Forward(x)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		if r, c := recon.Dims(); r != tt.batch || c != tt.inputDim {
			t.Errorf("recon dims = %dx%d, want %dx%d", r, c, tt.batch, tt.inputDim)
		}
		if r, c := latent.Dims(); r != tt.batch || c != tt.latentDim {
			t.Errorf("latent dims = %dx%d, want %dx%d", r, c, tt.batch, tt.latentDim)
		}
		for i := 0; i < tt.batch; i++ {
			for _, v := range recon.RawRowView(i) {
				if v <= 0 || v >= 1 {
					t.Fatalf("reconstruction %v outside (0, 1)", v)
				}
			}
		}
	}
}

// TestForwardShapeError tests that a wrong input width fails fast with ErrShape.
func TestForwardShapeError(t *testing.T) {
	m := newModel(t, 784, 8)

	_, _, err := m.Forward(mat.NewDense(2, 783, nil))
	if !errors.Is(err, ErrShape) {
		t.Errorf("Forward error = %v, want ErrShape", err)
	}
	if _, err := m.Encode(mat.NewDense(1, 10, nil)); !errors.Is(err, ErrShape) {
		t.Errorf("Encode error = %v, want ErrShape", err)
	}
	if err := m.Backward(mat.NewDense(2, 8, nil)); !errors.Is(err, ErrShape) {
		t.Errorf("Backward error = %v, want ErrShape", err)
	}
	if _, err := New(0, 8, 1); !errors.Is(err, ErrShape) {
		t.Errorf("New(0, 8) error = %v, want ErrShape", err)
	}
}

// TestForwardLeavesParamsUntouched tests that forward has no side effect on parameters.
func TestForwardLeavesParamsUntouched(t *testing.T) {
	m := newModel(t, 30, 4)
	before := snapshot(m.Params())

	if _, _, err := m.Forward(randomBatch(rand.New(rand.NewSource(3)), 6, 30)); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	after := snapshot(m.Params())
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("parameter %d changed from %v to %v", i, before[i], after[i])
		}
	}
}

func snapshot(params []opt.Param) []float64 {
	var out []float64
	for _, p := range params {
		out = append(out, p.Value...)
	}
	return out
}

// TestEncodeMatchesForwardLatent tests the inference-only encoder path.
func TestEncodeMatchesForwardLatent(t *testing.T) {
	m := newModel(t, 12, 2)
	x := randomBatch(rand.New(rand.NewSource(4)), 3, 12)

	_, latent, err := m.Forward(x)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	enc, err := m.Encode(x)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !mat.Equal(latent, enc) {
		t.Error("Encode differs from Forward latent")
	}
}

// TestParamsOrder tests that encoder parameters precede decoder parameters.
func TestParamsOrder(t *testing.T) {
	m := newModel(t, 10, 2)
	params := m.Params()

	if len(params) != 12 {
		t.Fatalf("len(Params()) = %d, want 12", len(params))
	}
	if params[0].Name != "encoder.0.weights" {
		t.Errorf("params[0] = %q", params[0].Name)
	}
	if params[11].Name != "decoder.2.biases" {
		t.Errorf("params[11] = %q", params[11].Name)
	}
}

// TestReconstructionLossDecreases trains on a fixed batch with Adam.
func TestReconstructionLossDecreases(t *testing.T) {
	m := newModel(t, 16, 2)
	adam := opt.NewAdam(m.Params(), 1e-3)
	mse := loss.MSE{}
	x := randomBatch(rand.New(rand.NewSource(5)), 8, 16)

	recon, _, _ := m.Forward(x)
	first := mse.Forward(recon, x)
	var last float64
	for i := 0; i < 200; i++ {
		adam.ZeroGrad()
		recon, _, err := m.Forward(x)
		if err != nil {
			t.Fatalf("Forward: %v", err)
		}
		last = mse.Forward(recon, x)
		if err := m.Backward(mse.Backward(recon, x)); err != nil {
			t.Fatalf("Backward: %v", err)
		}
		adam.Step()
	}

	if last >= first {
		t.Errorf("loss did not decrease: first %v, last %v", first, last)
	}
}

// TestCheckpointRoundTrip tests Write/Read preserve weights and metadata.
func TestCheckpointRoundTrip(t *testing.T) {
	m := newModel(t, 20, 3)
	meta := Meta{RunID: "run-1", Epoch: 4, Loss: 0.125}

	var buf bytes.Buffer
	if err := m.Write(&buf, meta); err != nil {
		t.Fatalf("Write: %v", err)
	}
	loaded, gotMeta, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if gotMeta != meta {
		t.Errorf("meta = %+v, want %+v", gotMeta, meta)
	}
	if loaded.InputDim() != 20 || loaded.LatentDim() != 3 {
		t.Errorf("dims = %d/%d, want 20/3", loaded.InputDim(), loaded.LatentDim())
	}

	x := randomBatch(rand.New(rand.NewSource(6)), 2, 20)
	want, _, _ := m.Forward(x)
	got, _, _ := loaded.Forward(x)
	if !mat.EqualApprox(want, got, 1e-15) {
		t.Error("loaded model reconstructs differently")
	}
}

// TestSaveLoadFile tests the file helpers.
func TestSaveLoadFile(t *testing.T) {
	m := newModel(t, 6, 2)
	path := t.TempDir() + "/model.gob"

	if err := m.Save(path, Meta{Epoch: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, meta, err := Load(path); err != nil || meta.Epoch != 1 {
		t.Fatalf("Load = %+v, %v", meta, err)
	}
	if _, _, err := Load(path + ".missing"); err == nil {
		t.Error("Load of a missing file should fail")
	}
}

// TestReadRejectsGarbage tests that arbitrary bytes are not accepted as a checkpoint.
func TestReadRejectsGarbage(t *testing.T) {
	if _, _, err := Read(bytes.NewReader([]byte("not a checkpoint"))); err == nil {
		t.Error("expected error")
	}
}
