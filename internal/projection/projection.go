// Package projection reduces latent point clouds to a few coordinates for
// reporting. Nothing here feeds back into training.
package projection

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrEmpty is returned when there are no points to project.
var ErrEmpty = errors.New("projection: no points")

// Engine maps an n×d point cloud to n×k coordinates.
type Engine interface {
	Project(points mat.Matrix) (*mat.Dense, error)
}

// PCA projects onto the leading principal components.
type PCA struct {
	// Components is the output width; zero means 2.
	Components int
}

func (p PCA) width() int {
	if p.Components <= 0 {
		return 2
	}
	return p.Components
}

// Project centers points and projects them onto the first Components
// principal axes. When the data spans fewer axes than requested, the
// remaining columns are zero.
func (p PCA) Project(points mat.Matrix) (*mat.Dense, error) {
	n, d := points.Dims()
	if n == 0 || d == 0 {
		return nil, ErrEmpty
	}
	k := p.width()
	out := mat.NewDense(n, k, nil)

	var pc stat.PC
	if ok := pc.PrincipalComponents(points, nil); !ok {
		return nil, fmt.Errorf("projection: principal components did not converge")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)

	centered := mat.DenseCopyOf(points)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, centered)
		mean := stat.Mean(col, nil)
		for i := range col {
			col[i] -= mean
		}
		centered.SetCol(j, col)
	}

	_, avail := vecs.Dims()
	use := k
	if avail < use {
		use = avail
	}
	var proj mat.Dense
	proj.Mul(centered, vecs.Slice(0, d, 0, use))
	out.Slice(0, n, 0, use).(*mat.Dense).Copy(&proj)
	return out, nil
}
