// Package preprocess turns patient records into the fixed-order numeric
// vectors consumed by predictive models.
package preprocess

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrDatasetNotFound is returned when none of the candidate paths exist.
var ErrDatasetNotFound = errors.New("reference dataset not found")

// ReferenceDataset is the tabular data the encoders and scalers are fit on.
type ReferenceDataset struct {
	Path    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// ReadReferenceDataset parses a CSV document whose first row is the header.
func ReadReferenceDataset(r io.Reader) (*ReferenceDataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	ds := &ReferenceDataset{
		Columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		ds.Columns[i] = name
		ds.index[name] = i
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		ds.Rows = append(ds.Rows, record)
	}

	if len(ds.Rows) == 0 {
		return nil, fmt.Errorf("reference dataset has no rows")
	}
	return ds, nil
}

// LoadReferenceDataset reads the first candidate path that exists.
func LoadReferenceDataset(paths []string) (*ReferenceDataset, error) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}

		ds, err := ReadReferenceDataset(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		ds.Path = path
		return ds, nil
	}
	return nil, ErrDatasetNotFound
}

// Column returns the non-empty cells of the named column.
func (d *ReferenceDataset) Column(name string) ([]string, bool) {
	idx, ok := d.index[name]
	if !ok {
		return nil, false
	}

	values := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		if idx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		values = append(values, cell)
	}
	return values, true
}
