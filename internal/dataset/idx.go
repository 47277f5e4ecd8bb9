package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// IDX magic numbers for unsigned-byte tensors.
const (
	idxLabels = 0x00000801
	idxImages = 0x00000803
)

// LoadIDX loads MNIST-format images and, when labelsPath is not empty, their
// labels. Either file may be gzip-compressed. Pixels are scaled to [0, 1].
func LoadIDX(imagesPath, labelsPath string) (*Dataset, error) {
	images, err := readIDXFile(imagesPath, ReadIDXImages)
	if err != nil {
		return nil, err
	}
	d := &Dataset{Samples: images}

	if labelsPath == "" {
		return d, nil
	}
	labels, err := readIDXFile(labelsPath, ReadIDXLabels)
	if err != nil {
		return nil, err
	}
	if len(labels) != len(images) {
		return nil, fmt.Errorf("%d images but %d labels: %w", len(images), len(labels), ErrFormat)
	}
	d.Labels = labels
	return d, nil
}

func readIDXFile[T any](filename string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	file, err := os.Open(filename)
	if err != nil {
		return zero, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	r, err := maybeGzip(bufio.NewReader(file))
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filename, err)
	}
	v, err := read(r)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", filename, err)
	}
	return v, nil
}

// maybeGzip wraps r in a gzip reader when it starts with the gzip magic bytes.
func maybeGzip(r *bufio.Reader) (io.Reader, error) {
	head, err := r.Peek(2)
	if err == nil && head[0] == 0x1f && head[1] == 0x8b {
		return gzip.NewReader(r)
	}
	return r, nil
}

// ReadIDXImages decodes an IDX3 unsigned-byte image file into flattened rows.
func ReadIDXImages(r io.Reader) ([][]float64, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("reading header: %w", ErrFormat)
	}
	if header[0] != idxImages {
		return nil, fmt.Errorf("image magic %#08x: %w", header[0], ErrFormat)
	}

	count, rows, cols := int(header[1]), int(header[2]), int(header[3])
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("image size %dx%d: %w", rows, cols, ErrFormat)
	}
	size := rows * cols
	buf := make([]byte, size)
	images := make([][]float64, count)
	for i := range images {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("image %d of %d truncated: %w", i, count, ErrFormat)
		}
		img := make([]float64, size)
		for p, b := range buf {
			img[p] = float64(b) / 255
		}
		images[i] = img
	}
	return images, nil
}

// ReadIDXLabels decodes an IDX1 unsigned-byte label file.
func ReadIDXLabels(r io.Reader) ([]int, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("reading header: %w", ErrFormat)
	}
	if header[0] != idxLabels {
		return nil, fmt.Errorf("label magic %#08x: %w", header[0], ErrFormat)
	}

	buf := make([]byte, header[1])
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("labels truncated: %w", ErrFormat)
	}
	labels := make([]int, len(buf))
	for i, b := range buf {
		labels[i] = int(b)
	}
	return labels, nil
}
