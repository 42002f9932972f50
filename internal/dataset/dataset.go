// Package dataset loads labeled image manifests and numeric CSV tables, and
// provides the deterministic splitting primitives used by training.
//
// A manifest is a CSV file with an "image,label" header where every row names
// one image and exactly one label. Image paths are resolved relative to the
// manifest's directory unless absolute.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"imgclass/pkg/domain"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrEmptyManifest is returned when a manifest has a header but no rows.
	ErrEmptyManifest = errors.New("dataset: manifest contains no samples")

	// ErrDuplicateImage is returned when the same image path appears twice,
	// which would give one image more than one label.
	ErrDuplicateImage = errors.New("dataset: duplicate image path in manifest")

	// ErrBadHeader is returned when the manifest header is not "image,label".
	ErrBadHeader = errors.New(`dataset: manifest header must be "image,label"`)
)

// LoadManifest reads a CSV manifest and returns its samples in file order.
func LoadManifest(path string) ([]domain.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("could not read manifest header: %w", err)
	}
	if len(header) != 2 ||
		!strings.EqualFold(strings.TrimSpace(header[0]), "image") ||
		!strings.EqualFold(strings.TrimSpace(header[1]), "label") {
		return nil, ErrBadHeader
	}

	dir := filepath.Dir(path)
	seen := map[string]bool{}
	var samples []domain.Sample
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: malformed manifest row: %w", err)
		}

		img := strings.TrimSpace(rec[0])
		label := strings.TrimSpace(rec[1])
		if img == "" || label == "" {
			return nil, fmt.Errorf("dataset: row %d: image and label must be non-empty", len(samples)+2)
		}
		if seen[img] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateImage, img)
		}
		seen[img] = true

		if !filepath.IsAbs(img) {
			img = filepath.Join(dir, img)
		}
		samples = append(samples, domain.Sample{Path: img, Label: label})
	}

	if len(samples) == 0 {
		return nil, ErrEmptyManifest
	}

	return samples, nil
}

// ClassCounts returns the number of samples per label.
func ClassCounts(samples []domain.Sample) map[string]int {
	counts := make(map[string]int, 4)
	for _, s := range samples {
		counts[s.Label]++
	}

	return counts
}

// Classes returns the sorted set of distinct labels present in samples.
func Classes(samples []domain.Sample) []string {
	counts := ClassCounts(samples)
	out := make([]string, 0, len(counts))
	for label := range counts {
		out = append(out, label)
	}
	sort.Strings(out)

	return out
}
