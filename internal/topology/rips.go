package topology

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/mat"
)

// Rips computes Vietoris–Rips persistence of a point cloud (one point per row).
type Rips struct {
	// MaxEdgeLength truncates the filtration; edges longer than it are never
	// added. Zero or +Inf means the full filtration.
	MaxEdgeLength float64
}

// edge is a 1-simplex of the Rips complex, u < v.
type edge struct {
	u, v int32
	w    float64
}

// triangle is a 2-simplex stored by the filtration ranks of its edges.
type triangle struct {
	diam  float64
	edges [3]int32 // descending rank
}

func (r Rips) bounded() bool {
	return r.MaxEdgeLength > 0 && !math.IsInf(r.MaxEdgeLength, 1)
}

// Summarize returns the dimension 0 and 1 persistence of points. The result
// depends only on the set of rows, not their order. Fewer than two points
// produce no finite pairs.
func (r Rips) Summarize(points mat.Matrix) (Summary, error) {
	n, _ := points.Dims()
	var s Summary
	if n == 0 {
		return s, nil
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, points)
		for _, v := range rows[i] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return Summary{}, fmt.Errorf("point %d: %w", i, ErrNonFinite)
			}
		}
	}

	edges := r.edges(rows)

	h0, forest := components(n, edges)
	s.H0 = h0
	s.Essential[Components] = make([]float64, n-len(forest))

	h1, essential := loops(n, edges, forest)
	s.H1 = h1
	if len(essential) > 0 {
		s.Essential[Loops] = essential
	}

	sortPairs(s.H0)
	sortPairs(s.H1)
	return s, nil
}

// edges returns the admissible edges sorted in filtration order:
// by length, then by endpoint indices.
func (r Rips) edges(rows [][]float64) []edge {
	n := len(rows)
	edges := make([]edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := floats.Distance(rows[i], rows[j], 2)
			if r.bounded() && w > r.MaxEdgeLength {
				continue
			}
			edges = append(edges, edge{u: int32(i), v: int32(j), w: w})
		}
	}
	sort.Slice(edges, func(a, b int) bool {
		if edges[a].w != edges[b].w {
			return edges[a].w < edges[b].w
		}
		if edges[a].u != edges[b].u {
			return edges[a].u < edges[b].u
		}
		return edges[a].v < edges[b].v
	})
	return edges
}

// components returns the dimension 0 pairs and the weights of the minimum
// spanning forest. Every vertex is born at 0; each forest edge merges two
// components at its length.
func components(n int, edges []edge) ([]Pair, []float64) {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(e.u), T: simple.Node(e.v), W: e.w})
	}

	forest := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	path.Kruskal(forest, g)

	var pairs []Pair
	var weights []float64
	it := forest.WeightedEdges()
	for it.Next() {
		w := it.WeightedEdge().Weight()
		weights = append(weights, w)
		if w > 0 {
			pairs = append(pairs, Pair{Birth: 0, Death: w})
		}
	}
	return pairs, weights
}
