package topology

import "sort"

// loops computes dimension 1 persistence by reducing the boundary matrix of
// the Rips triangles over Z/2, columns in filtration order. A reduced column
// whose lowest entry is edge e pairs the loop born at e with the triangle
// that fills it. forest holds the spanning-forest weights from components;
// positive edges left unpaired are returned as essential births.
//
// Triangles are generated edge by edge as the cofacets whose longest edge is
// the current one, so the pass stops as soon as every loop has died.
func loops(n int, edges []edge, forest []float64) ([]Pair, []float64) {
	if n < 3 || len(edges) < 3 {
		return nil, unpairedBirths(edges, nil, forest)
	}

	rank := make([]int32, n*n)
	for i := range rank {
		rank[i] = -1
	}
	for r, e := range edges {
		rank[int(e.u)*n+int(e.v)] = int32(r)
		rank[int(e.v)*n+int(e.u)] = int32(r)
	}

	positive := len(edges) - len(forest)
	reduced := make([][]int32, len(edges))
	paired := 0
	var pairs []Pair
	var tris []triangle

	for r := 0; r < len(edges) && paired < positive; r++ {
		tris = cofacets(n, edges, rank, int32(r), tris[:0])
		for _, t := range tris {
			if paired == positive {
				break
			}
			col := []int32{t.edges[0], t.edges[1], t.edges[2]}
			for len(col) > 0 && reduced[col[0]] != nil {
				col = symmetricDifference(col, reduced[col[0]])
			}
			if len(col) == 0 {
				continue
			}

			low := col[0]
			reduced[low] = col
			paired++

			birth := edges[low].w
			if t.diam > birth {
				pairs = append(pairs, Pair{Birth: birth, Death: t.diam})
			}
		}
	}

	return pairs, unpairedBirths(edges, reduced, forest)
}

// cofacets appends to dst the triangles whose longest edge is edges[r],
// ordered by the ranks of their two shorter edges. Walking r upwards visits
// every triangle once, in filtration order.
func cofacets(n int, edges []edge, rank []int32, r int32, dst []triangle) []triangle {
	e := edges[r]
	u, v := int(e.u), int(e.v)
	for k := 0; k < n; k++ {
		if k == u || k == v {
			continue
		}
		a, b := rank[u*n+k], rank[v*n+k]
		if a < 0 || b < 0 || a > r || b > r {
			continue
		}
		dst = append(dst, triangle{diam: e.w, edges: sortDesc3(r, a, b)})
	}
	sort.Slice(dst, func(i, j int) bool {
		if dst[i].edges[1] != dst[j].edges[1] {
			return dst[i].edges[1] < dst[j].edges[1]
		}
		return dst[i].edges[2] < dst[j].edges[2]
	})
	return dst
}

// unpairedBirths returns the lengths of positive edges that no triangle kills.
// The forest edges are removed by weight, which is exact as a multiset even
// when equal lengths make the choice of forest ambiguous.
func unpairedBirths(edges []edge, reduced [][]int32, forest []float64) []float64 {
	negative := make(map[float64]int, len(forest))
	for _, w := range forest {
		negative[w]++
	}

	var births []float64
	for r, e := range edges {
		if reduced != nil && reduced[r] != nil {
			continue
		}
		if negative[e.w] > 0 {
			negative[e.w]--
			continue
		}
		births = append(births, e.w)
	}
	return births
}

func sortDesc3(a, b, c int32) [3]int32 {
	if a < b {
		a, b = b, a
	}
	if b < c {
		b, c = c, b
	}
	if a < b {
		a, b = b, a
	}
	return [3]int32{a, b, c}
}

// symmetricDifference adds two Z/2 columns stored in descending order.
func symmetricDifference(a, b []int32) []int32 {
	out := make([]int32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] > b[j]:
			out = append(out, a[i])
			i++
		case a[i] < b[j]:
			out = append(out, b[j])
			j++
		default:
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
