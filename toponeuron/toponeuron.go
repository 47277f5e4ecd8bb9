// Package toponeuron is the public entry point for training autoencoders
// with a persistent-homology regularizer on the latent space.
package toponeuron

import (
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/config"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/dataset"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/model"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/opt"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/policy"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/projection"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/topology"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/trainer"
)

// Re-export common types and functions for easier access
type (
	Config      = config.Config
	Dataset     = dataset.Dataset
	Autoencoder = model.Autoencoder
	Meta        = model.Meta
	Summary     = topology.Summary
	Pair        = topology.Pair
	Engine      = topology.Engine
	Measurement = topology.Measurement
	Policy      = policy.Policy
	History     = trainer.History
	Step        = trainer.Step
	Callback    = trainer.Callback
	Trainer     = trainer.Trainer
)

// Errors
var (
	ErrShape     = model.ErrShape
	ErrNumeric   = trainer.ErrNumeric
	ErrDimension = topology.ErrDimension
)

// Configuration
func DefaultConfig() Config {
	return config.Default()
}

func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// Data
func Synthetic(n, dim int, seed int64) *Dataset {
	return dataset.Synthetic(n, dim, seed)
}

func LoadMNIST(images, labels string) (*Dataset, error) {
	return dataset.LoadIDX(images, labels)
}

// Model creation
func NewAutoencoder(inputDim, latentDim int, seed int64) (*Autoencoder, error) {
	return model.New(inputDim, latentDim, seed)
}

// Topology
func NewEngine(maxEdgeLength, order float64) Engine {
	return topology.NewEngine(maxEdgeLength, order)
}

func Measure(e Engine, latent mat.Matrix) (Measurement, error) {
	return topology.Measure(e, latent)
}

func Wasserstein(a, b []Pair, p float64) float64 {
	return topology.Wasserstein(a, b, p)
}

func Compose(recon, topo, threshold, lambda float64) float64 {
	return policy.Compose(recon, topo, threshold, lambda)
}

// Callbacks
func Logger(interval int) trainer.Logger {
	return trainer.Logger{Interval: interval}
}

func ModelCheckpoint(filename string) Callback {
	return trainer.NewModelCheckpoint(filename)
}

func EarlyStopping(patience int, minDelta float64) *trainer.EarlyStopping {
	return trainer.NewEarlyStopping(patience, minDelta)
}

func CSVLogger(filename string) Callback {
	return trainer.NewCSVLogger(filename, false)
}

// NewTrainer wires a model, a Rips engine, an Adam optimizer and a seeded
// loader over data according to cfg.
func NewTrainer(cfg Config, ae *Autoencoder, data *Dataset, callbacks ...Callback) *Trainer {
	engine := topology.NewEngine(cfg.MaxEdgeLength, cfg.WassersteinOrder)
	optimizer := opt.NewAdam(ae.Params(), cfg.LearningRate)
	if cfg.LRStep > 0 {
		callbacks = append(callbacks, trainer.NewSchedulerCallback(opt.NewStepLR(optimizer, cfg.LRStep, cfg.LRGamma)))
	}
	loader := dataset.NewLoader(data, cfg.BatchSize, cfg.Seed)
	return trainer.New(cfg, ae, engine, optimizer, loader, callbacks...)
}

// Train validates cfg, builds a fresh model and trains it on data.
func Train(cfg Config, data *Dataset, callbacks ...Callback) (*Autoencoder, *History, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	ae, err := model.New(cfg.InputDim, cfg.LatentDim, cfg.Seed)
	if err != nil {
		return nil, nil, err
	}
	h, err := NewTrainer(cfg, ae, data, callbacks...).Run()
	return ae, h, err
}

// Projection
func Project2D(latent *mat.Dense) (*mat.Dense, error) {
	return projection.PCA{Components: 2}.Project(latent)
}

// Model Persistence
func Load(filename string) (*Autoencoder, Meta, error) {
	return model.Load(filename)
}
