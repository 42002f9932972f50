package train

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"imgclass/internal/classifier"
	"imgclass/pkg/domain"
)

// DefaultSpec returns the benchmark parameters used when a run does not
// provide its own.
func DefaultSpec() domain.TrainSpec {
	return domain.TrainSpec{
		TestFraction: 0.2,
		Folds:        5,
		Seed:         42,
		TopK:         10,
		KNN: domain.KNNGrid{
			K:       []int{3, 5, 7},
			Weights: []string{classifier.WeightsUniform, classifier.WeightsDistance},
		},
		Forest: domain.ForestGrid{
			Trees:    []int{50},
			MaxDepth: []int{0, 8},
			MinLeaf:  []int{1, 3},
		},
		SVM: domain.SVMGrid{
			Lambda: []float64{0.01, 0.1},
			Epochs: []int{50},
		},
	}
}

// ValidateSpec checks a training spec before any work starts, so bad
// requests fail fast with a description of the offending field.
func ValidateSpec(spec domain.TrainSpec) error {
	if spec.TestFraction <= 0 || spec.TestFraction >= 1 {
		return fmt.Errorf("%w: testFraction must be in (0, 1), got %v", ErrBadSpec, spec.TestFraction)
	}
	if spec.Folds < 2 {
		return fmt.Errorf("%w: folds must be at least 2, got %d", ErrBadSpec, spec.Folds)
	}
	if spec.TopK < 1 {
		return fmt.Errorf("%w: topK must be at least 1, got %d", ErrBadSpec, spec.TopK)
	}

	for _, k := range spec.KNN.K {
		if k < 1 {
			return fmt.Errorf("%w: knn k must be at least 1, got %d", ErrBadSpec, k)
		}
	}
	for _, w := range spec.KNN.Weights {
		if w != classifier.WeightsUniform && w != classifier.WeightsDistance {
			return fmt.Errorf("%w: unknown knn weights %q", ErrBadSpec, w)
		}
	}
	for _, trees := range spec.Forest.Trees {
		if trees < 1 {
			return fmt.Errorf("%w: forest trees must be at least 1, got %d", ErrBadSpec, trees)
		}
	}
	for _, depth := range spec.Forest.MaxDepth {
		if depth < 0 {
			return fmt.Errorf("%w: forest maxDepth must not be negative, got %d", ErrBadSpec, depth)
		}
	}
	for _, minLeaf := range spec.Forest.MinLeaf {
		if minLeaf < 0 {
			return fmt.Errorf("%w: forest minLeaf must not be negative, got %d", ErrBadSpec, minLeaf)
		}
	}
	for _, lambda := range spec.SVM.Lambda {
		if lambda <= 0 {
			return fmt.Errorf("%w: svm lambda must be positive, got %v", ErrBadSpec, lambda)
		}
	}
	for _, epochs := range spec.SVM.Epochs {
		if epochs < 1 {
			return fmt.Errorf("%w: svm epochs must be at least 1, got %d", ErrBadSpec, epochs)
		}
	}

	if len(expandGrid(spec)) == 0 {
		return ErrEmptyGrid
	}

	return nil
}

// SpecHash returns the hex SHA-256 of the spec's JSON form. Grid order is
// part of the search semantics (it breaks ties), so the plain JSON
// encoding is already canonical: two specs hash equal exactly when they
// describe the same run.
func SpecHash(spec domain.TrainSpec) (string, error) {
	data, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("could not encode spec: %w", err)
	}

	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:]), nil
}
