package trainer

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

var historyColumns = []string{"run_id", "epoch", "loss", "recon", "topo", "active_batches", "batches", "lr", "time_seconds"}

// CSVLogger writes one row per epoch with the composed loss, its reconstruction
// and topology terms, and how many batches took the penalty branch.
// Write failures are printed and kept; Err reports the first one.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	file  *os.File
	w     *csv.Writer
	start time.Time
	err   error
}

// NewCSVLogger creates a CSVLogger. With append set, rows are added after
// the existing contents and the header is only written to an empty file.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{Filename: filename, Append: append}
}

// Err returns the first open or write error, if any.
func (c *CSVLogger) Err() error {
	return c.err
}

func (c *CSVLogger) fail(format string, args ...any) {
	err := fmt.Errorf(format, args...)
	fmt.Printf("CSVLogger: %v\n", err)
	if c.err == nil {
		c.err = err
	}
}

// writeRow writes and flushes a single record.
func (c *CSVLogger) writeRow(row []string, what string) {
	if err := c.w.Write(row); err != nil {
		c.fail("failed to write %s: %w", what, err)
		return
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.fail("failed to write %s: %w", what, err)
	}
}

func (c *CSVLogger) OnTrainBegin(t *Trainer) {
	c.err = nil
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if c.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	file, err := os.OpenFile(c.Filename, flags, 0644)
	if err != nil {
		c.fail("failed to open file %s: %w", c.Filename, err)
		return
	}
	c.file = file
	c.w = csv.NewWriter(file)
	c.start = time.Now()

	if c.Append {
		info, err := file.Stat()
		if err != nil {
			c.fail("failed to stat %s: %w", c.Filename, err)
			return
		}
		if info.Size() > 0 {
			return
		}
	}
	c.writeRow(historyColumns, "header")
}

func (c *CSVLogger) OnEpochEnd(epoch int, loss float64, t *Trainer) {
	if c.w == nil {
		return
	}

	s := t.History().Summarize(epoch)
	c.writeRow([]string{
		t.RunID(),
		strconv.Itoa(epoch),
		fmt.Sprintf("%.6f", loss),
		fmt.Sprintf("%.6f", s.Recon),
		fmt.Sprintf("%.6f", s.Topo),
		strconv.Itoa(s.Active),
		strconv.Itoa(s.Steps),
		strconv.FormatFloat(t.Optimizer().LR(), 'g', -1, 64),
		fmt.Sprintf("%.2f", time.Since(c.start).Seconds()),
	}, fmt.Sprintf("epoch %d", epoch))
}

func (c *CSVLogger) OnTrainEnd(t *Trainer) {
	if c.file == nil {
		return
	}
	c.w.Flush()
	if err := c.file.Close(); err != nil {
		c.fail("failed to close %s: %w", c.Filename, err)
	}
	c.file = nil
	c.w = nil
}
