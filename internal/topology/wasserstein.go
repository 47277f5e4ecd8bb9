package topology

import (
	"fmt"
	"math"
)

// diagonal returns the L∞ distance from p to the diagonal Birth == Death.
func diagonal(p Pair) float64 {
	return (p.Death - p.Birth) / 2
}

// chebyshev returns the L∞ distance between two pairs.
func chebyshev(a, b Pair) float64 {
	return math.Max(math.Abs(a.Birth-b.Birth), math.Abs(a.Death-b.Death))
}

// Wasserstein returns the p-Wasserstein distance between two diagrams with
// the L∞ ground metric. Every point is matched either to a point of the
// other diagram or to its projection on the diagonal, and the cost is
// (Σ c^p)^(1/p) over the cheapest such matching. It panics if p < 1.
func Wasserstein(a, b []Pair, p float64) float64 {
	if !(p >= 1) {
		panic(fmt.Sprintf("topology: Wasserstein order must be >= 1, got %v", p))
	}
	a, b = offDiagonal(a), offDiagonal(b)

	if len(a) == 0 || len(b) == 0 {
		var sum float64
		for _, x := range a {
			sum += math.Pow(diagonal(x), p)
		}
		for _, y := range b {
			sum += math.Pow(diagonal(y), p)
		}
		return math.Pow(sum, 1/p)
	}

	n, m := len(a), len(b)
	size := n + m
	cost := make([][]float64, size)
	for i := range cost {
		cost[i] = make([]float64, size)
	}
	for i := 0; i < n; i++ {
		d := math.Pow(diagonal(a[i]), p)
		for j := 0; j < m; j++ {
			cost[i][j] = math.Pow(chebyshev(a[i], b[j]), p)
		}
		for j := m; j < size; j++ {
			cost[i][j] = d
		}
	}
	for j := 0; j < m; j++ {
		d := math.Pow(diagonal(b[j]), p)
		for i := n; i < size; i++ {
			cost[i][j] = d
		}
	}

	total := minAssignment(cost)
	if total < 0 {
		total = 0
	}
	return math.Pow(total, 1/p)
}

func offDiagonal(pairs []Pair) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.Death > p.Birth {
			out = append(out, p)
		}
	}
	return out
}

// minAssignment returns the cost of a minimum perfect matching of a square
// cost matrix (Hungarian method with row/column potentials, O(n³)).
func minAssignment(cost [][]float64) float64 {
	n := len(cost)
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	match := make([]int, n+1) // match[j] = row assigned to column j, 1-based
	way := make([]int, n+1)
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		match[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = math.Inf(1)
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := match[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[match[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if match[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			match[j0] = match[j1]
			j0 = j1
		}
	}

	var total float64
	for j := 1; j <= n; j++ {
		total += cost[match[j]-1][j-1]
	}
	return total
}
