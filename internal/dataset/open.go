package dataset

import "fmt"

// Options selects a dataset source. The first non-empty of MNISTImages
// and CSV wins; otherwise Synthetic samples of width Dim are generated.
type Options struct {
	MNISTImages string
	MNISTLabels string

	CSV       string
	CSVLabel  int
	CSVHeader bool

	Synthetic int
	Dim       int
	Seed      int64
}

// Open loads the dataset described by o. CSV features are min-max
// normalized so they fall in the range of a sigmoid reconstruction.
func Open(o Options) (*Dataset, error) {
	switch {
	case o.MNISTImages != "":
		return LoadIDX(o.MNISTImages, o.MNISTLabels)
	case o.CSV != "":
		d, err := LoadCSV(o.CSV, o.CSVLabel, o.CSVHeader)
		if err != nil {
			return nil, err
		}
		d.Normalize()
		return d, nil
	case o.Synthetic > 0:
		if o.Dim <= 0 {
			return nil, fmt.Errorf("synthetic dataset needs a positive width (got %d)", o.Dim)
		}
		return Synthetic(o.Synthetic, o.Dim, o.Seed), nil
	default:
		return nil, fmt.Errorf("no dataset source selected")
	}
}
