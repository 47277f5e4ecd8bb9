package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// LoadCSV loads samples from a CSV file.
// labelCol is the index of an integer class column, or -1 for none.
// All other columns are used as features.
// hasHeader skips the first line if true.
func LoadCSV(filename string, labelCol int, hasHeader bool) (*Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	startRow := 0
	if hasHeader {
		startRow = 1
	}
	if len(records) <= startRow {
		return nil, fmt.Errorf("csv file has no data rows: %w", ErrFormat)
	}

	numCols := len(records[startRow])
	if labelCol >= numCols {
		return nil, fmt.Errorf("label column %d out of %d: %w", labelCol, numCols, ErrFormat)
	}

	d := &Dataset{Samples: make([][]float64, 0, len(records)-startRow)}
	if labelCol >= 0 {
		d.Labels = make([]int, 0, len(records)-startRow)
	}

	for i := startRow; i < len(records); i++ {
		record := records[i]
		if len(record) != numCols {
			return nil, fmt.Errorf("inconsistent number of columns at row %d: %w", i, ErrFormat)
		}

		sample := make([]float64, 0, numCols)
		for j, valStr := range record {
			if j == labelCol {
				label, err := strconv.Atoi(valStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse label at row %d: %w", i, err)
				}
				d.Labels = append(d.Labels, label)
				continue
			}
			val, err := strconv.ParseFloat(valStr, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse value at row %d, col %d: %w", i, j, err)
			}
			sample = append(sample, val)
		}
		d.Samples = append(d.Samples, sample)
	}

	return d, nil
}
