package trainer

import "gonum.org/v1/gonum/stat"

// Step records one processed batch.
type Step struct {
	Epoch int
	Batch int
	// Recon is the reconstruction error, Topo the topology measurement.
	Recon float64
	Topo  float64
	// Loss is the composed loss; Active reports whether Topo was added to it.
	Loss   float64
	Active bool
}

// History is the append-only record of a run, one Step per batch.
type History struct {
	steps []Step
}

// Append records s.
func (h *History) Append(s Step) {
	h.steps = append(h.steps, s)
}

// Len returns the number of recorded steps.
func (h *History) Len() int {
	return len(h.steps)
}

// Steps returns a copy of every recorded step.
func (h *History) Steps() []Step {
	return append([]Step(nil), h.steps...)
}

// Losses returns the composed loss of every step in order.
func (h *History) Losses() []float64 {
	out := make([]float64, len(h.steps))
	for i, s := range h.steps {
		out[i] = s.Loss
	}
	return out
}

// Epoch returns the steps recorded during epoch.
func (h *History) Epoch(epoch int) []Step {
	var out []Step
	for _, s := range h.steps {
		if s.Epoch == epoch {
			out = append(out, s)
		}
	}
	return out
}

// MovingAverage returns the mean composed loss of the last n steps,
// or of every step when fewer are recorded. It is 0 for an empty history.
func (h *History) MovingAverage(n int) float64 {
	if len(h.steps) == 0 || n <= 0 {
		return 0
	}
	if n > len(h.steps) {
		n = len(h.steps)
	}
	losses := make([]float64, n)
	for i, s := range h.steps[len(h.steps)-n:] {
		losses[i] = s.Loss
	}
	return stat.Mean(losses, nil)
}

// EpochSummary aggregates the steps of one epoch.
type EpochSummary struct {
	Recon  float64
	Topo   float64
	Loss   float64
	Active int
	Steps  int
}

// Summarize returns the mean losses of epoch and how many of its steps
// carried the topology term.
func (h *History) Summarize(epoch int) EpochSummary {
	steps := h.Epoch(epoch)
	if len(steps) == 0 {
		return EpochSummary{}
	}
	recon := make([]float64, len(steps))
	topo := make([]float64, len(steps))
	loss := make([]float64, len(steps))
	sum := EpochSummary{Steps: len(steps)}
	for i, s := range steps {
		recon[i], topo[i], loss[i] = s.Recon, s.Topo, s.Loss
		if s.Active {
			sum.Active++
		}
	}
	sum.Recon = stat.Mean(recon, nil)
	sum.Topo = stat.Mean(topo, nil)
	sum.Loss = stat.Mean(loss, nil)
	return sum
}
