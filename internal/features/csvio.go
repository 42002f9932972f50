package features

import (
	"encoding/csv"
	"fmt"
	"imgclass/pkg/domain"
	"os"
	"strconv"
)

// WriteCSV stores labeled vectors as a CSV file with an
// "image,label,<feature names...>" header. Vectors must all have Count
// entries.
func WriteCSV(path string, vectors []domain.LabeledVector) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create features file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)

	header := append([]string{"image", "label"}, Names()...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	row := make([]string, len(header))
	for _, v := range vectors {
		if len(v.Values) != Count {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrSchemaMismatch, v.Sample.Path, len(v.Values), Count)
		}

		row[0] = v.Sample.Path
		row[1] = v.Sample.Label
		for i, val := range v.Values {
			row[i+2] = strconv.FormatFloat(val, 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("could not write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("could not flush features file: %w", err)
	}

	return f.Close()
}

// ReadCSV loads a features file produced by WriteCSV. It returns the
// vectors and the feature names from the header; every row must have one
// value per named feature.
func ReadCSV(path string) ([]domain.LabeledVector, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open features file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	// row lengths are validated against the header below
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("could not read features file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("features: %s is empty", path)
	}

	header := records[0]
	if len(header) < 3 || header[0] != "image" || header[1] != "label" {
		return nil, nil, fmt.Errorf(`features: %s must start with an "image,label,..." header`, path)
	}
	names := header[2:]

	vectors := make([]domain.LabeledVector, 0, len(records)-1)
	for rowNum, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, nil, fmt.Errorf("%w: row %d has %d columns, want %d",
				ErrSchemaMismatch, rowNum+2, len(rec), len(header))
		}

		values := make(domain.FeatureVector, len(names))
		for i, cell := range rec[2:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("features: row %d column %q: %w", rowNum+2, names[i], err)
			}
			values[i] = v
		}

		vectors = append(vectors, domain.LabeledVector{
			Sample: domain.Sample{Path: rec[0], Label: rec[1]},
			Values: values,
		})
	}

	return vectors, names, nil
}
