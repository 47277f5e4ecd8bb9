package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/topology"
)

func readAll(t *testing.T, b []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	return records
}

func TestWritePoints(t *testing.T) {
	var buf bytes.Buffer
	pts := mat.NewDense(2, 2, []float64{0.5, -1, 2, 0})
	if err := WritePoints(&buf, pts, []int{3, 7}, "pc"); err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"index", "label", "pc0", "pc1"},
		{"0", "3", "0.5", "-1"},
		{"1", "7", "2", "0"},
	}
	if got := readAll(t, buf.Bytes()); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if err := WritePoints(&buf, pts, []int{1}, "z"); err == nil {
		t.Error("expected error for label count mismatch")
	}
}

func TestWritePointsUnlabeled(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePoints(&buf, mat.NewDense(1, 1, []float64{1}), nil, "z"); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, buf.Bytes()); got[1][1] != "" {
		t.Errorf("label = %q, want empty", got[1][1])
	}
}

func TestWriteReconstructions(t *testing.T) {
	var buf bytes.Buffer
	in := mat.NewDense(3, 2, []float64{1, 0, 0, 1, 1, 1})
	out := mat.NewDense(3, 2, []float64{0.9, 0.1, 0.2, 0.8, 0.7, 0.6})
	if err := WriteReconstructions(&buf, in, out, nil, 2); err != nil {
		t.Fatal(err)
	}

	got := readAll(t, buf.Bytes())
	if len(got) != 5 {
		t.Fatalf("got %d records, want 5", len(got))
	}
	if !reflect.DeepEqual(got[2], []string{"0", "", "recon", "0.9", "0.1"}) {
		t.Errorf("record = %v", got[2])
	}

	if err := WriteReconstructions(&buf, in, mat.NewDense(1, 2, nil), nil, 1); err == nil {
		t.Error("expected error for shape mismatch")
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	s := topology.Summary{
		H0: []topology.Pair{{Birth: 0, Death: 1}},
		H1: []topology.Pair{{Birth: 1, Death: 1.5}},
	}
	s.Essential[topology.Components] = []float64{0}
	if err := WriteSummary(&buf, s); err != nil {
		t.Fatal(err)
	}

	want := [][]string{
		{"dim", "birth", "death"},
		{"0", "0", "1"},
		{"0", "0", ""},
		{"1", "1", "1.5"},
	}
	if got := readAll(t, buf.Bytes()); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSave(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "points.csv")
	err := Save(filename, func(w io.Writer) error {
		return WritePoints(w, mat.NewDense(1, 1, []float64{2}), nil, "x")
	})
	if err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(readAll(t, b)) != 2 {
		t.Errorf("file = %q", b)
	}
}
