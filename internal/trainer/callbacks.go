package trainer

import (
	"fmt"
	"math"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/model"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/opt"
)

// Callback defines the interface for training callbacks.
// Epochs are numbered from 1; batches from 0 within each epoch.
type Callback interface {
	OnTrainBegin(t *Trainer)
	OnTrainEnd(t *Trainer)
	OnEpochBegin(epoch int, t *Trainer)
	OnEpochEnd(epoch int, loss float64, t *Trainer)
	OnBatchBegin(batch int, t *Trainer)
	OnBatchEnd(batch int, step Step, t *Trainer)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(t *Trainer)                        {}
func (c BaseCallback) OnTrainEnd(t *Trainer)                          {}
func (c BaseCallback) OnEpochBegin(epoch int, t *Trainer)             {}
func (c BaseCallback) OnEpochEnd(epoch int, loss float64, t *Trainer) {}
func (c BaseCallback) OnBatchBegin(batch int, t *Trainer)             {}
func (c BaseCallback) OnBatchEnd(batch int, step Step, t *Trainer)    {}

// SchedulerCallback steps a learning rate scheduler at the end of every epoch.
type SchedulerCallback struct {
	BaseCallback
	scheduler opt.Scheduler
}

func NewSchedulerCallback(scheduler opt.Scheduler) *SchedulerCallback {
	return &SchedulerCallback{scheduler: scheduler}
}

func (c *SchedulerCallback) OnEpochEnd(epoch int, loss float64, t *Trainer) {
	c.scheduler.Step()
}

// EarlyStopping stops training when the epoch loss has stopped improving.
type EarlyStopping struct {
	BaseCallback
	Patience  int
	Threshold float64

	bestLoss     float64
	numBadEpochs int
	Stopped      bool
}

func NewEarlyStopping(patience int, threshold float64) *EarlyStopping {
	return &EarlyStopping{
		Patience:  patience,
		Threshold: threshold,
		bestLoss:  math.Inf(1),
	}
}

func (c *EarlyStopping) OnEpochEnd(epoch int, loss float64, t *Trainer) {
	if loss < c.bestLoss-c.Threshold {
		c.bestLoss = loss
		c.numBadEpochs = 0
	} else {
		c.numBadEpochs++
	}

	if c.numBadEpochs >= c.Patience {
		fmt.Printf("\nEarly stopping at epoch %d: loss %.6f did not improve for %d epochs\n", epoch, loss, c.Patience)
		c.Stopped = true
		t.StopTraining()
	}
}

// ModelCheckpoint saves the model after every epoch if it's the best so far.
type ModelCheckpoint struct {
	BaseCallback
	Filename string

	bestLoss float64
}

func NewModelCheckpoint(filename string) *ModelCheckpoint {
	return &ModelCheckpoint{
		Filename: filename,
		bestLoss: math.Inf(1),
	}
}

func (c *ModelCheckpoint) OnEpochEnd(epoch int, loss float64, t *Trainer) {
	if loss < c.bestLoss {
		c.bestLoss = loss
		meta := model.Meta{RunID: t.RunID(), Epoch: epoch, Loss: loss}
		if err := t.Model().Save(c.Filename, meta); err != nil {
			fmt.Printf("Error saving checkpoint: %v\n", err)
		} else {
			fmt.Printf("Checkpoint saved: loss %.6f is new best\n", loss)
		}
	}
}

// Logger logs training progress to console.
type Logger struct {
	BaseCallback
	Interval int
	// Verbose adds the epoch's mean reconstruction and topology terms.
	Verbose bool
}

func (c Logger) OnEpochEnd(epoch int, loss float64, t *Trainer) {
	if c.Interval <= 0 || epoch%c.Interval != 0 {
		return
	}
	fmt.Printf("Epoch %d: Loss=%.4f\n", epoch, loss)
	if c.Verbose {
		s := t.History().Summarize(epoch)
		fmt.Printf("  recon=%.6f topo=%.6f topology active in %d/%d batches\n", s.Recon, s.Topo, s.Active, s.Steps)
	}
}
