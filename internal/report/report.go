// Package report writes training artifacts as CSV for external plotting.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/topology"
)

func label(labels []int, i int) string {
	if labels == nil {
		return ""
	}
	return strconv.Itoa(labels[i])
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}

// WritePoints writes one row per point: index, label, then the coordinates
// named prefix0, prefix1, ... Labels may be nil.
func WritePoints(w io.Writer, points mat.Matrix, labels []int, prefix string) error {
	n, d := points.Dims()
	if labels != nil && len(labels) != n {
		return fmt.Errorf("report: %d labels for %d points", len(labels), n)
	}

	cw := csv.NewWriter(w)
	header := []string{"index", "label"}
	for j := 0; j < d; j++ {
		header = append(header, prefix+strconv.Itoa(j))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, d+2)
	for i := 0; i < n; i++ {
		record[0] = strconv.Itoa(i)
		record[1] = label(labels, i)
		for j := 0; j < d; j++ {
			record[j+2] = format(points.At(i, j))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReconstructions writes the first n inputs and their reconstructions,
// alternating rows tagged "input" and "recon", one pixel per column.
func WriteReconstructions(w io.Writer, inputs, recon mat.Matrix, labels []int, n int) error {
	r, d := inputs.Dims()
	if rr, rd := recon.Dims(); rr != r || rd != d {
		return fmt.Errorf("report: inputs %dx%d but reconstructions %dx%d", r, d, rr, rd)
	}
	if n > r {
		n = r
	}

	cw := csv.NewWriter(w)
	header := []string{"index", "label", "kind"}
	for j := 0; j < d; j++ {
		header = append(header, "p"+strconv.Itoa(j))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, d+3)
	for i := 0; i < n; i++ {
		for _, row := range []struct {
			kind string
			m    mat.Matrix
		}{{"input", inputs}, {"recon", recon}} {
			record[0] = strconv.Itoa(i)
			record[1] = label(labels, i)
			record[2] = row.kind
			for j := 0; j < d; j++ {
				record[j+3] = format(row.m.At(i, j))
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the finite and essential persistence pairs of s,
// one row per pair. Essential classes have an empty death.
func WriteSummary(w io.Writer, s topology.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"dim", "birth", "death"}); err != nil {
		return err
	}
	for dim := topology.Components; dim <= topology.Loops; dim++ {
		pairs, err := s.Pairs(dim)
		if err != nil {
			return err
		}
		d := strconv.Itoa(dim)
		for _, p := range pairs {
			if err := cw.Write([]string{d, format(p.Birth), format(p.Death)}); err != nil {
				return err
			}
		}
		for _, b := range s.Essential[dim] {
			if err := cw.Write([]string{d, format(b), ""}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save creates filename and passes it to write.
func Save(filename string, write func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return f.Close()
}
