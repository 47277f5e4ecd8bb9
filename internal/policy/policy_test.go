package policy

import (
	"math"
	"testing"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name                           string
		recon, topo, threshold, lambda float64
		want                           float64
	}{
		{"below threshold", 0.2, 0.3, 0.5, 0.1, 0.2},
		{"above threshold", 0.2, 0.6, 0.5, 0.1, 0.26},
		{"at threshold", 0.2, 0.5, 0.5, 0.1, 0.25},
		{"zero lambda", 0.2, 0.9, 0.5, 0, 0.2},
		{"zero threshold", 0.4, 0, 0, 1, 0.4},
		{"zero threshold positive topo", 0.4, 0.1, 0, 1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compose(tt.recon, tt.topo, tt.threshold, tt.lambda)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Compose(%v, %v, %v, %v) = %v, want %v",
					tt.recon, tt.topo, tt.threshold, tt.lambda, got, tt.want)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	p := Policy{Threshold: 0.5, Lambda: 0.1}

	tests := []struct {
		topo   float64
		active bool
	}{
		{0.3, false},
		{0.4999999, false},
		{0.5, true},
		{0.6, true},
	}

	for _, tt := range tests {
		d := p.Decide(0.2, tt.topo)
		if d.Active != tt.active {
			t.Errorf("Decide(0.2, %v).Active = %v, want %v", tt.topo, d.Active, tt.active)
		}
		if want := Compose(0.2, tt.topo, p.Threshold, p.Lambda); d.Loss != want {
			t.Errorf("Decide(0.2, %v).Loss = %v, want %v", tt.topo, d.Loss, want)
		}
	}
}

// TestComposeNaN tests that a NaN penalty is never silently dropped.
func TestComposeNaN(t *testing.T) {
	got := Compose(0.2, math.NaN(), 0.5, 0.1)
	if !math.IsNaN(got) {
		t.Errorf("Compose with NaN topo = %v, want NaN", got)
	}
	if !(Policy{Threshold: 0.5, Lambda: 0.1}).Decide(0.2, math.NaN()).Active {
		t.Error("NaN topo should take the additive branch")
	}
}
