// Package dataset provides in-memory sample sets and a seeded mini-batch loader.
package dataset

import (
	"errors"
	"math/rand"
)

// ErrFormat is returned when an input file is malformed.
var ErrFormat = errors.New("dataset: malformed input")

// Dataset represents a collection of samples and their class labels.
// Labels may be nil when the source has none.
type Dataset struct {
	Samples [][]float64
	Labels  []int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Dim returns the width of a sample, or 0 for an empty dataset.
func (d *Dataset) Dim() int {
	if len(d.Samples) == 0 {
		return 0
	}
	return len(d.Samples[0])
}

// Label returns the label of sample i, or -1 when the dataset is unlabeled.
func (d *Dataset) Label(i int) int {
	if d.Labels == nil {
		return -1
	}
	return d.Labels[i]
}

// Normalize performs min-max normalization of every feature into [0, 1].
// Constant features become 0.
func (d *Dataset) Normalize() {
	if len(d.Samples) == 0 {
		return
	}

	numFeatures := len(d.Samples[0])
	lo := make([]float64, numFeatures)
	hi := make([]float64, numFeatures)
	copy(lo, d.Samples[0])
	copy(hi, d.Samples[0])

	for _, sample := range d.Samples {
		for i, val := range sample {
			if val < lo[i] {
				lo[i] = val
			}
			if val > hi[i] {
				hi[i] = val
			}
		}
	}

	for _, sample := range d.Samples {
		for i := range sample {
			if diff := hi[i] - lo[i]; diff != 0 {
				sample[i] = (sample[i] - lo[i]) / diff
			} else {
				sample[i] = 0
			}
		}
	}
}

// Split splits the dataset into two based on the given ratio (0.0 to 1.0).
// Returns two new Datasets (train, test) sharing the sample storage.
func (d *Dataset) Split(ratio float64) (*Dataset, *Dataset) {
	if ratio <= 0 {
		return &Dataset{}, d
	}
	if ratio >= 1 {
		return d, &Dataset{}
	}

	splitIdx := int(float64(len(d.Samples)) * ratio)

	train := &Dataset{Samples: d.Samples[:splitIdx]}
	test := &Dataset{Samples: d.Samples[splitIdx:]}
	if d.Labels != nil {
		train.Labels = d.Labels[:splitIdx]
		test.Labels = d.Labels[splitIdx:]
	}
	return train, test
}

// digitGlyphs are 3x5 bitmaps of the digits 0-9, row-major.
var digitGlyphs = [10][15]float64{
	{1, 1, 1, 1, 0, 1, 1, 0, 1, 1, 0, 1, 1, 1, 1},
	{0, 1, 0, 1, 1, 0, 0, 1, 0, 0, 1, 0, 1, 1, 1},
	{1, 1, 1, 0, 0, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1},
	{1, 1, 1, 0, 0, 1, 0, 1, 1, 0, 0, 1, 1, 1, 1},
	{1, 0, 1, 1, 0, 1, 1, 1, 1, 0, 0, 1, 0, 0, 1},
	{1, 1, 1, 1, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1},
	{1, 1, 1, 1, 0, 0, 1, 1, 1, 1, 0, 1, 1, 1, 1},
	{1, 1, 1, 0, 0, 1, 0, 1, 0, 0, 1, 0, 0, 1, 0},
	{1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1},
	{1, 1, 1, 1, 0, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1},
}

// Synthetic generates n noisy digit images of dim pixels each. The glyphs are
// scaled onto the largest square grid that fits in dim; pixels outside it
// carry noise only. Values are clipped to [0, 1].
func Synthetic(n, dim int, seed int64) *Dataset {
	rng := rand.New(rand.NewSource(seed))

	side := 0
	for (side+1)*(side+1) <= dim {
		side++
	}

	d := &Dataset{
		Samples: make([][]float64, n),
		Labels:  make([]int, n),
	}
	for i := 0; i < n; i++ {
		digit := i % 10
		d.Labels[i] = digit

		x := make([]float64, dim)
		for p := range x {
			x[p] = rng.Float64() * 0.1
		}
		for y := 0; y < side; y++ {
			gy := y * 5 / side
			for c := 0; c < side; c++ {
				gx := c * 3 / side
				if digitGlyphs[digit][gy*3+gx] > 0.5 {
					x[y*side+c] = 1 - rng.Float64()*0.1
				}
			}
		}
		d.Samples[i] = x
	}
	return d
}
