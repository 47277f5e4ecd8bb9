// Package topology measures the shape of a point cloud with persistent
// homology. Summarize builds a Vietoris–Rips filtration over pairwise
// Euclidean distances and reports connected-component merges (dimension 0)
// and loops (dimension 1) as birth/death pairs; Wasserstein compares two
// such summaries.
//
// Everything here works on plain matrices and float64 values. Nothing is
// differentiable: callers use the result as a measurement.
package topology

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Homology dimensions reported by a Summary.
const (
	Components = 0
	Loops      = 1
)

// ErrDimension is returned for a homology dimension other than 0 or 1.
var ErrDimension = errors.New("unsupported homology dimension")

// ErrNonFinite is returned when a point cloud contains NaN or infinite coordinates.
var ErrNonFinite = errors.New("non-finite coordinate")

// Pair is a topological feature born at Birth and killed at Death (Birth ≤ Death).
type Pair struct {
	Birth float64
	Death float64
}

// Persistence returns Death - Birth.
func (p Pair) Persistence() float64 {
	return p.Death - p.Birth
}

// Summary is a persistence diagram for dimensions 0 and 1.
// H0 and H1 hold the finite pairs with positive persistence, sorted by
// (Birth, Death). Essential holds the birth values of classes that never
// die within the filtration.
type Summary struct {
	H0        []Pair
	H1        []Pair
	Essential [2][]float64
}

// Pairs returns the finite pairs of one dimension.
func (s Summary) Pairs(dim int) ([]Pair, error) {
	switch dim {
	case Components:
		return s.H0, nil
	case Loops:
		return s.H1, nil
	default:
		return nil, fmt.Errorf("dimension %d: %w", dim, ErrDimension)
	}
}

// Equal reports whether both summaries hold the same multisets.
func (s Summary) Equal(o Summary) bool {
	return pairsEqual(s.H0, o.H0) && pairsEqual(s.H1, o.H1) &&
		floatsEqual(s.Essential[0], o.Essential[0]) &&
		floatsEqual(s.Essential[1], o.Essential[1])
}

// TotalPersistence returns the sum of (Death - Birth) over the finite pairs of dim.
func (s Summary) TotalPersistence(dim int) (float64, error) {
	pairs, err := s.Pairs(dim)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, p := range pairs {
		total += p.Persistence()
	}
	return total, nil
}

func sortPairs(pairs []Pair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Birth != pairs[j].Birth {
			return pairs[i].Birth < pairs[j].Birth
		}
		return pairs[i].Death < pairs[j].Death
	})
}

func pairsEqual(a, b []Pair) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] && !(math.IsNaN(a[i]) && math.IsNaN(b[i])) {
			return false
		}
	}
	return true
}
