// Package policy decides when the topology penalty joins the training loss.
package policy

// Compose returns recon when topo is below threshold and
// recon + lambda*topo otherwise. topo equal to threshold is penalized.
func Compose(recon, topo, threshold, lambda float64) float64 {
	if topo < threshold {
		return recon
	}
	return recon + lambda*topo
}

// Policy holds the threshold gate and the weight of the topology term.
type Policy struct {
	Threshold float64
	Lambda    float64
}

// Decision is the composed loss of one batch.
type Decision struct {
	Loss float64
	// Active reports whether the topology term was added.
	Active bool
}

// Decide composes recon and topo.
func (p Policy) Decide(recon, topo float64) Decision {
	return Decision{
		Loss:   Compose(recon, topo, p.Threshold, p.Lambda),
		Active: !(topo < p.Threshold),
	}
}
