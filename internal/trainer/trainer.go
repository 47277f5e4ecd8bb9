// Package trainer runs the topology-regularized autoencoder training loop.
package trainer

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/config"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/dataset"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/loss"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/model"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/opt"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/policy"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/topology"
)

// ErrNumeric is returned when a composed loss is NaN or infinite.
var ErrNumeric = errors.New("non-finite loss")

// ErrNoData is returned when the batch source yields nothing in an epoch.
var ErrNoData = errors.New("data source yielded no batches")

// BatchSource is an ordered, blocking pull of mini-batches.
// Reset starts a new pass over the data.
type BatchSource interface {
	Next() (dataset.Batch, bool)
	Reset()
}

// Trainer owns one training run. Only StopTraining may be called from
// another goroutine.
type Trainer struct {
	cfg       config.Config
	model     *model.Autoencoder
	engine    topology.Engine
	optimizer opt.Optimizer
	source    BatchSource
	policy    policy.Policy
	loss      loss.MSE
	callbacks []Callback

	history *History
	runID   string
	epoch   int
	stop    atomic.Bool
}

// New returns a Trainer. The optimizer must have been built over m.Params().
func New(cfg config.Config, m *model.Autoencoder, engine topology.Engine, optimizer opt.Optimizer, source BatchSource, callbacks ...Callback) *Trainer {
	return &Trainer{
		cfg:       cfg,
		model:     m,
		engine:    engine,
		optimizer: optimizer,
		source:    source,
		policy:    policy.Policy{Threshold: cfg.WuweiThreshold, Lambda: cfg.TaoLambda},
		callbacks: callbacks,
		history:   &History{},
		runID:     uuid.NewString(),
	}
}

// Run trains for cfg.Epochs epochs or until a callback stops it. The
// history is returned even when training aborts with an error.
func (t *Trainer) Run() (*History, error) {
	t.optimizer.ZeroGrad()
	for _, cb := range t.callbacks {
		cb.OnTrainBegin(t)
	}
	err := t.run()
	for _, cb := range t.callbacks {
		cb.OnTrainEnd(t)
	}
	return t.history, err
}

func (t *Trainer) run() error {
	for epoch := 1; epoch <= t.cfg.Epochs && !t.stop.Load(); epoch++ {
		t.epoch = epoch
		for _, cb := range t.callbacks {
			cb.OnEpochBegin(epoch, t)
		}

		t.source.Reset()
		batches := 0
		for !t.stop.Load() {
			b, ok := t.source.Next()
			if !ok {
				break
			}
			for _, cb := range t.callbacks {
				cb.OnBatchBegin(batches, t)
			}
			step, err := t.TrainStep(b.Inputs)
			if err != nil {
				return fmt.Errorf("epoch %d batch %d: %w", epoch, batches, err)
			}
			step.Epoch, step.Batch = epoch, batches
			t.history.Append(step)
			for _, cb := range t.callbacks {
				cb.OnBatchEnd(batches, step, t)
			}
			batches++
		}
		if batches == 0 && !t.stop.Load() {
			return fmt.Errorf("epoch %d: %w", epoch, ErrNoData)
		}

		avg := t.history.MovingAverage(t.cfg.HistoryWindow)
		for _, cb := range t.callbacks {
			cb.OnEpochEnd(epoch, avg, t)
		}
	}
	return nil
}

// TrainStep performs one optimization step on x and returns its losses.
// Only the reconstruction error is backpropagated; the topology term
// changes the reported loss, never the gradient.
func (t *Trainer) TrainStep(x *mat.Dense) (Step, error) {
	recon, latent, err := t.model.Forward(x)
	if err != nil {
		return Step{}, err
	}
	reconLoss := t.loss.Forward(recon, x)

	m, err := topology.Measure(t.engine, latent)
	if err != nil {
		if errors.Is(err, topology.ErrNonFinite) {
			return Step{}, fmt.Errorf("%w: %w", ErrNumeric, err)
		}
		return Step{}, err
	}

	d := t.policy.Decide(reconLoss, m.Loss)
	if math.IsNaN(d.Loss) || math.IsInf(d.Loss, 0) {
		return Step{}, fmt.Errorf("recon %v topo %v: %w", reconLoss, m.Loss, ErrNumeric)
	}

	if err := t.model.Backward(t.loss.Backward(recon, x)); err != nil {
		return Step{}, err
	}
	t.optimizer.Step()
	t.optimizer.ZeroGrad()

	return Step{Recon: reconLoss, Topo: m.Loss, Loss: d.Loss, Active: d.Active}, nil
}

// Snapshot is one batch passed through the model without training.
type Snapshot struct {
	Inputs *mat.Dense
	Labels []int
	Recon  *mat.Dense
	Latent *mat.Dense
}

// Sample draws the first batch of a fresh pass and runs it through the model.
func (t *Trainer) Sample() (Snapshot, error) {
	t.source.Reset()
	b, ok := t.source.Next()
	if !ok {
		return Snapshot{}, ErrNoData
	}
	recon, latent, err := t.model.Forward(b.Inputs)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Inputs: b.Inputs, Labels: b.Labels, Recon: recon, Latent: latent}, nil
}

// StopTraining ends the run after the current batch.
func (t *Trainer) StopTraining() { t.stop.Store(true) }

// History returns the run history recorded so far.
func (t *Trainer) History() *History { return t.history }

// Model returns the model being trained.
func (t *Trainer) Model() *model.Autoencoder { return t.model }

// Optimizer returns the optimizer driving the run.
func (t *Trainer) Optimizer() opt.Optimizer { return t.optimizer }

// RunID identifies this run in logs and checkpoints.
func (t *Trainer) RunID() string { return t.runID }

// Epoch returns the current 1-based epoch, or 0 before training starts.
func (t *Trainer) Epoch() int { return t.epoch }
