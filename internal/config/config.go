package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Config captures the runtime knobs for a training run.
// It is passed by value; nothing mutates it once training starts.
type Config struct {
	TaoLambda        float64 `yaml:"tao_lambda"`
	WuweiThreshold   float64 `yaml:"wuwei_threshold"`
	BatchSize        int     `yaml:"batch_size"`
	LatentDim        int     `yaml:"latent_dim"`
	Epochs           int     `yaml:"epochs"`
	InputDim         int     `yaml:"input_dim"`
	LearningRate     float64 `yaml:"learning_rate"`
	Seed             int64   `yaml:"seed"`
	HistoryWindow    int     `yaml:"history_window"`
	MaxEdgeLength    float64 `yaml:"max_edge_length"`
	WassersteinOrder float64 `yaml:"wasserstein_order"`
	LRStep           int     `yaml:"lr_step"`
	LRGamma          float64 `yaml:"lr_gamma"`
	Patience         int     `yaml:"patience"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		TaoLambda:        0.1,
		WuweiThreshold:   0.5,
		BatchSize:        128,
		LatentDim:        8,
		Epochs:           20,
		InputDim:         784,
		LearningRate:     1e-3,
		Seed:             42,
		HistoryWindow:    100,
		WassersteinOrder: 1,
		LRGamma:          0.5,
	}
}

// Overrides captures CLI supplied values. Negative numbers and NaN mean unset
// for the float knobs and the seed, so zero can be passed explicitly.
type Overrides struct {
	TaoLambda      float64
	WuweiThreshold float64
	BatchSize      int
	LatentDim      int
	Epochs         int
	LearningRate   float64
	Seed           int64
}

// Unset returns Overrides that change nothing.
func Unset() Overrides {
	return Overrides{TaoLambda: -1, WuweiThreshold: -1, LearningRate: -1, Seed: -1}
}

// Load reads and validates a Config. Keys missing from the file keep their
// Default values.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ApplyOverrides returns a copy of c updated with every set override.
func (c Config) ApplyOverrides(o Overrides) Config {
	if o.TaoLambda >= 0 {
		c.TaoLambda = o.TaoLambda
	}
	if o.WuweiThreshold >= 0 {
		c.WuweiThreshold = o.WuweiThreshold
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LatentDim > 0 {
		c.LatentDim = o.LatentDim
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed >= 0 {
		c.Seed = o.Seed
	}
	return c
}

// Validate verifies the config is runnable.
func (c Config) Validate() error {
	if !finiteNonNegative(c.TaoLambda) {
		return fmt.Errorf("tao_lambda must be >= 0 (got %v)", c.TaoLambda)
	}
	if !finiteNonNegative(c.WuweiThreshold) {
		return fmt.Errorf("wuwei_threshold must be >= 0 (got %v)", c.WuweiThreshold)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LatentDim <= 0 {
		return fmt.Errorf("latent_dim must be > 0 (got %d)", c.LatentDim)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.InputDim <= 0 {
		return fmt.Errorf("input_dim must be > 0 (got %d)", c.InputDim)
	}
	if !(c.LearningRate > 0) || math.IsInf(c.LearningRate, 0) {
		return fmt.Errorf("learning_rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("history_window must be > 0 (got %d)", c.HistoryWindow)
	}
	if !(c.MaxEdgeLength >= 0) {
		return fmt.Errorf("max_edge_length must be >= 0 (got %v)", c.MaxEdgeLength)
	}
	if !(c.WassersteinOrder >= 1) || math.IsInf(c.WassersteinOrder, 0) {
		return fmt.Errorf("wasserstein_order must be >= 1 (got %v)", c.WassersteinOrder)
	}
	if c.LRStep < 0 {
		return fmt.Errorf("lr_step must be >= 0 (got %d)", c.LRStep)
	}
	if c.LRStep > 0 && !(c.LRGamma > 0 && c.LRGamma <= 1) {
		return fmt.Errorf("lr_gamma must be in (0, 1] (got %v)", c.LRGamma)
	}
	if c.Patience < 0 {
		return errors.New("patience must be >= 0")
	}
	return nil
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func parse(r io.Reader) (Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return Config{}, fmt.Errorf("line %d: missing ':'", lineNo)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, "\"'")

		var err error
		switch key {
		case "tao_lambda":
			cfg.TaoLambda, err = strconv.ParseFloat(value, 64)
		case "wuwei_threshold":
			cfg.WuweiThreshold, err = strconv.ParseFloat(value, 64)
		case "batch_size":
			cfg.BatchSize, err = strconv.Atoi(value)
		case "latent_dim":
			cfg.LatentDim, err = strconv.Atoi(value)
		case "epochs":
			cfg.Epochs, err = strconv.Atoi(value)
		case "input_dim":
			cfg.InputDim, err = strconv.Atoi(value)
		case "learning_rate":
			cfg.LearningRate, err = strconv.ParseFloat(value, 64)
		case "seed":
			cfg.Seed, err = strconv.ParseInt(value, 10, 64)
		case "history_window":
			cfg.HistoryWindow, err = strconv.Atoi(value)
		case "max_edge_length":
			cfg.MaxEdgeLength, err = strconv.ParseFloat(value, 64)
		case "wasserstein_order":
			cfg.WassersteinOrder, err = strconv.ParseFloat(value, 64)
		case "lr_step":
			cfg.LRStep, err = strconv.Atoi(value)
		case "lr_gamma":
			cfg.LRGamma, err = strconv.ParseFloat(value, 64)
		case "patience":
			cfg.Patience, err = strconv.Atoi(value)
		default:
			return Config{}, fmt.Errorf("line %d: unknown key %s", lineNo, key)
		}
		if err != nil {
			return Config{}, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
