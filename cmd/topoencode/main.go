package main

import (
	"flag"
	"io"
	"log"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/dataset"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/model"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/projection"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/report"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/topology"
)

// Encodes a dataset with a trained checkpoint and reports the latent shape.
func main() {
	checkpoint := flag.String("checkpoint", "", "Trained model file")
	mnistImages := flag.String("mnist-images", "", "MNIST idx image file (.gz accepted)")
	mnistLabels := flag.String("mnist-labels", "", "MNIST idx label file (.gz accepted)")
	csvPath := flag.String("csv", "", "CSV file of samples")
	csvLabel := flag.Int("csv-label", -1, "Index of the CSV label column, -1 for none")
	csvHeader := flag.Bool("csv-header", false, "Skip the first CSV line")
	synthetic := flag.Int("synthetic", 512, "Number of synthetic digit samples when no file is given")
	seed := flag.Int64("seed", 42, "PRNG seed for synthetic data")
	limit := flag.Int("limit", 128, "Encode at most this many samples, 0 for all")
	maxEdge := flag.Float64("max-edge-length", 0, "Truncate the Rips filtration, 0 for none")

	latentsPath := flag.String("latents", "", "Write latent vectors to this file")
	projectionPath := flag.String("projection", "", "Write a 2D PCA projection to this file")
	diagramPath := flag.String("diagram", "", "Write the persistence diagram to this file")

	flag.Parse()

	if *checkpoint == "" {
		log.Fatalf("-checkpoint is required")
	}
	ae, meta, err := model.Load(*checkpoint)
	if err != nil {
		log.Fatalf("failed to load checkpoint: %v", err)
	}
	log.Printf("run=%s epoch=%d loss=%.4f model=%d->%d", meta.RunID, meta.Epoch, meta.Loss, ae.InputDim(), ae.LatentDim())

	data, err := dataset.Open(dataset.Options{
		MNISTImages: *mnistImages,
		MNISTLabels: *mnistLabels,
		CSV:         *csvPath,
		CSVLabel:    *csvLabel,
		CSVHeader:   *csvHeader,
		Synthetic:   *synthetic,
		Dim:         ae.InputDim(),
		Seed:        *seed,
	})
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}

	n := data.Len()
	if *limit > 0 && *limit < n {
		n = *limit
	}
	if n == 0 {
		log.Fatalf("dataset is empty")
	}
	x := mat.NewDense(n, data.Dim(), nil)
	var labels []int
	if data.Labels != nil {
		labels = data.Labels[:n]
	}
	for i := 0; i < n; i++ {
		x.SetRow(i, data.Samples[i])
	}

	latent, err := ae.Encode(x)
	if err != nil {
		log.Fatalf("failed to encode: %v", err)
	}

	m, err := topology.Measure(topology.NewEngine(*maxEdge, 1), latent)
	if err != nil {
		log.Fatalf("failed to measure topology: %v", err)
	}
	h0, _ := m.Summary.TotalPersistence(topology.Components)
	h1, _ := m.Summary.TotalPersistence(topology.Loops)
	log.Printf("samples=%d H0 pairs=%d (total %.4f) H1 pairs=%d (total %.4f)", n, len(m.Summary.H0), h0, len(m.Summary.H1), h1)
	log.Printf("d0=%.4f d1=%.4f topo_loss=%.4f", m.D0, m.D1, m.Loss)

	if *latentsPath != "" {
		if err := report.Save(*latentsPath, func(w io.Writer) error {
			return report.WritePoints(w, latent, labels, "z")
		}); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *projectionPath != "" {
		coords, err := projection.PCA{}.Project(latent)
		if err != nil {
			log.Fatalf("failed to project latents: %v", err)
		}
		if err := report.Save(*projectionPath, func(w io.Writer) error {
			return report.WritePoints(w, coords, labels, "pc")
		}); err != nil {
			log.Fatalf("%v", err)
		}
	}
	if *diagramPath != "" {
		if err := report.Save(*diagramPath, func(w io.Writer) error {
			return report.WriteSummary(w, m.Summary)
		}); err != nil {
			log.Fatalf("%v", err)
		}
	}
}
