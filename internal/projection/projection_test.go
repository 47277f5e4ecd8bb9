package projection

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestPCAShape(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name       string
		rows, cols int
		components int
		wantCols   int
	}{
		{"default width", 20, 8, 0, 2},
		{"three components", 20, 8, 3, 3},
		{"one dimensional input", 10, 1, 2, 2},
		{"single point", 1, 8, 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := mat.NewDense(tt.rows, tt.cols, nil)
			pts.Apply(func(_, _ int, _ float64) float64 { return rng.NormFloat64() }, pts)

			got, err := PCA{Components: tt.components}.Project(pts)
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			r, c := got.Dims()
			if r != tt.rows || c != tt.wantCols {
				t.Errorf("dims = %dx%d, want %dx%d", r, c, tt.rows, tt.wantCols)
			}
		})
	}
}

// TestPCALine tests that points on a line land on the first axis with
// their spacing preserved.
func TestPCALine(t *testing.T) {
	pts := mat.NewDense(5, 3, nil)
	for i := 0; i < 5; i++ {
		x := float64(i)
		pts.SetRow(i, []float64{x, 2 * x, -x})
	}

	got, err := PCA{}.Project(pts)
	if err != nil {
		t.Fatal(err)
	}

	step := math.Sqrt(1 + 4 + 1)
	for i := 0; i < 5; i++ {
		if math.Abs(got.At(i, 1)) > 1e-9 {
			t.Errorf("row %d second coordinate = %v, want 0", i, got.At(i, 1))
		}
		if i > 0 {
			d := math.Abs(got.At(i, 0) - got.At(i-1, 0))
			if math.Abs(d-step) > 1e-9 {
				t.Errorf("spacing %d = %v, want %v", i, d, step)
			}
		}
	}
	if s := floats.Sum(mat.Col(nil, 0, got)); math.Abs(s) > 1e-9 {
		t.Errorf("first coordinate not centered: sum = %v", s)
	}
}

// TestPCAPreservesPlanarDistances tests that 2D data is only rotated.
func TestPCAPreservesPlanarDistances(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pts := mat.NewDense(12, 2, nil)
	pts.Apply(func(_, _ int, _ float64) float64 { return rng.Float64() }, pts)

	got, err := PCA{}.Project(pts)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 12; i++ {
		for j := i + 1; j < 12; j++ {
			want := floats.Distance(pts.RawRowView(i), pts.RawRowView(j), 2)
			have := floats.Distance(got.RawRowView(i), got.RawRowView(j), 2)
			if math.Abs(want-have) > 1e-9 {
				t.Fatalf("distance %d-%d = %v, want %v", i, j, have, want)
			}
		}
	}
}

func TestPCAEmpty(t *testing.T) {
	var e Engine = PCA{}
	if _, err := e.Project(&mat.Dense{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("error = %v, want ErrEmpty", err)
	}
}
