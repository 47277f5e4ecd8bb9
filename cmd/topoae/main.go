package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/FlavioCFOliveira/TopoNeuron/internal/config"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/dataset"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/model"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/opt"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/projection"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/report"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/topology"
	"github.com/FlavioCFOliveira/TopoNeuron/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file (defaults apply when empty)")
	mnistImages := flag.String("mnist-images", "", "MNIST idx image file (.gz accepted)")
	mnistLabels := flag.String("mnist-labels", "", "MNIST idx label file (.gz accepted)")
	csvPath := flag.String("csv", "", "CSV file of samples")
	csvLabel := flag.Int("csv-label", -1, "Index of the CSV label column, -1 for none")
	csvHeader := flag.Bool("csv-header", false, "Skip the first CSV line")
	synthetic := flag.Int("synthetic", 2048, "Number of synthetic digit samples when no file is given")

	taoLambda := flag.Float64("tao-lambda", -1, "Weight of the topology term")
	wuweiThreshold := flag.Float64("wuwei-threshold", -1, "Topology loss at which the penalty applies")
	batchSize := flag.Int("batch-size", 0, "Batch size")
	latentDim := flag.Int("latent-dim", 0, "Latent dimension")
	epochs := flag.Int("epochs", 0, "Number of epochs")
	learningRate := flag.Float64("lr", -1, "Adam learning rate")
	seed := flag.Int64("seed", -1, "PRNG seed, -1 keeps the configured value")
	optimizer := flag.String("optimizer", "adam", "Optimizer: adam or sgd")

	resume := flag.String("resume", "", "Checkpoint to continue training from")
	checkpoint := flag.String("checkpoint", "", "Save the best model to this file")
	history := flag.String("history", "", "Write per-epoch history CSV to this file")
	projectionPath := flag.String("projection", "", "Write a 2D PCA projection of one latent batch to this file")
	reconPath := flag.String("recon", "", "Write sample reconstructions to this file")
	reconCount := flag.Int("recon-count", 10, "Number of reconstructions to write")
	verbose := flag.Bool("verbose", false, "Log reconstruction and topology terms every epoch")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	cfg = cfg.ApplyOverrides(config.Overrides{
		TaoLambda:      *taoLambda,
		WuweiThreshold: *wuweiThreshold,
		BatchSize:      *batchSize,
		LatentDim:      *latentDim,
		Epochs:         *epochs,
		LearningRate:   *learningRate,
		Seed:           *seed,
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	data, err := dataset.Open(dataset.Options{
		MNISTImages: *mnistImages,
		MNISTLabels: *mnistLabels,
		CSV:         *csvPath,
		CSVLabel:    *csvLabel,
		CSVHeader:   *csvHeader,
		Synthetic:   *synthetic,
		Dim:         cfg.InputDim,
		Seed:        cfg.Seed,
	})
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	if data.Dim() != cfg.InputDim {
		log.Fatalf("dataset has %d features but input_dim is %d", data.Dim(), cfg.InputDim)
	}
	log.Printf("samples=%d dim=%d batch_size=%d latent_dim=%d", data.Len(), data.Dim(), cfg.BatchSize, cfg.LatentDim)

	var ae *model.Autoencoder
	if *resume != "" {
		var meta model.Meta
		ae, meta, err = model.Load(*resume)
		if err != nil {
			log.Fatalf("failed to load checkpoint: %v", err)
		}
		if ae.InputDim() != cfg.InputDim || ae.LatentDim() != cfg.LatentDim {
			log.Fatalf("checkpoint is %d->%d, config wants %d->%d", ae.InputDim(), ae.LatentDim(), cfg.InputDim, cfg.LatentDim)
		}
		log.Printf("resuming run %s from epoch %d (loss %.4f)", meta.RunID, meta.Epoch, meta.Loss)
	} else {
		ae, err = model.New(cfg.InputDim, cfg.LatentDim, cfg.Seed)
		if err != nil {
			log.Fatalf("failed to build model: %v", err)
		}
	}

	var o opt.Optimizer
	switch *optimizer {
	case "adam":
		o = opt.NewAdam(ae.Params(), cfg.LearningRate)
	case "sgd":
		o = opt.NewSGD(ae.Params(), cfg.LearningRate)
	default:
		log.Fatalf("unknown optimizer %q", *optimizer)
	}

	callbacks := []trainer.Callback{trainer.Logger{Interval: 1, Verbose: *verbose}}
	if cfg.LRStep > 0 {
		callbacks = append(callbacks, trainer.NewSchedulerCallback(opt.NewStepLR(o, cfg.LRStep, cfg.LRGamma)))
	}
	if cfg.Patience > 0 {
		callbacks = append(callbacks, trainer.NewEarlyStopping(cfg.Patience, 0))
	}
	if *checkpoint != "" {
		callbacks = append(callbacks, trainer.NewModelCheckpoint(*checkpoint))
	}
	if *history != "" {
		callbacks = append(callbacks, trainer.NewCSVLogger(*history, false))
	}

	engine := topology.NewEngine(cfg.MaxEdgeLength, cfg.WassersteinOrder)
	loader := dataset.NewLoader(data, cfg.BatchSize, cfg.Seed)
	tr := trainer.New(cfg, ae, engine, o, loader, callbacks...)
	log.Printf("run=%s epochs=%d batches_per_epoch=%d", tr.RunID(), cfg.Epochs, loader.Len())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		tr.StopTraining()
	}()

	h, err := tr.Run()
	if err != nil {
		log.Fatalf("training failed after %d steps: %v", h.Len(), err)
	}
	log.Printf("finished: steps=%d loss=%.4f", h.Len(), h.MovingAverage(cfg.HistoryWindow))

	if *projectionPath == "" && *reconPath == "" {
		return
	}
	snap, err := tr.Sample()
	if err != nil {
		log.Fatalf("failed to sample: %v", err)
	}
	if *projectionPath != "" {
		coords, err := projection.PCA{Components: 2}.Project(snap.Latent)
		if err != nil {
			log.Fatalf("failed to project latents: %v", err)
		}
		err = report.Save(*projectionPath, func(w io.Writer) error {
			return report.WritePoints(w, coords, snap.Labels, "pc")
		})
		if err != nil {
			log.Fatalf("%v", err)
		}
		rows, _ := coords.Dims()
		log.Printf("wrote projection of %d latents to %s", rows, *projectionPath)
	}
	if *reconPath != "" {
		err := report.Save(*reconPath, func(w io.Writer) error {
			return report.WriteReconstructions(w, snap.Inputs, snap.Recon, snap.Labels, *reconCount)
		})
		if err != nil {
			log.Fatalf("%v", err)
		}
		log.Printf("wrote reconstructions to %s", *reconPath)
	}
}
