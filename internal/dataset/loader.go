package dataset

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Batch is one mini-batch: one sample per row of Inputs.
type Batch struct {
	Inputs *mat.Dense
	// Labels is nil for unlabeled datasets.
	Labels []int
}

// Loader yields shuffled mini-batches in a fixed order until exhausted.
// The final batch may be smaller than the batch size.
type Loader struct {
	data      *Dataset
	batchSize int
	rng       *rand.Rand
	order     []int
	pos       int
}

// NewLoader returns a loader over d. The first epoch is already shuffled.
// It panics if batchSize is not positive.
func NewLoader(d *Dataset, batchSize int, seed int64) *Loader {
	if batchSize <= 0 {
		panic("dataset: batch size must be positive")
	}
	l := &Loader{
		data:      d,
		batchSize: batchSize,
		rng:       rand.New(rand.NewSource(seed)),
		order:     make([]int, d.Len()),
	}
	for i := range l.order {
		l.order[i] = i
	}
	l.shuffle()
	return l
}

func (l *Loader) shuffle() {
	l.rng.Shuffle(len(l.order), func(i, j int) {
		l.order[i], l.order[j] = l.order[j], l.order[i]
	})
}

// Next returns the next batch, or false when the epoch is exhausted.
func (l *Loader) Next() (Batch, bool) {
	if l.pos >= len(l.order) {
		return Batch{}, false
	}
	end := l.pos + l.batchSize
	if end > len(l.order) {
		end = len(l.order)
	}
	idx := l.order[l.pos:end]
	l.pos = end

	b := Batch{Inputs: mat.NewDense(len(idx), l.data.Dim(), nil)}
	if l.data.Labels != nil {
		b.Labels = make([]int, len(idx))
	}
	for r, i := range idx {
		b.Inputs.SetRow(r, l.data.Samples[i])
		if b.Labels != nil {
			b.Labels[r] = l.data.Labels[i]
		}
	}
	return b, true
}

// Reset starts a new epoch with a fresh shuffle.
func (l *Loader) Reset() {
	l.pos = 0
	l.shuffle()
}

// Len returns the number of batches per epoch.
func (l *Loader) Len() int {
	return (len(l.order) + l.batchSize - 1) / l.batchSize
}
