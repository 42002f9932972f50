package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centers every feature at zero mean and scales it to unit
// sample standard deviation. Features that are constant in the training
// data keep a scale of one so transformed values stay finite. The fitted
// parameters serialize with the model artifact.
type StandardScaler struct {
	// Means holds the per-feature training means.
	Means []float64 `json:"means"`
	// Stds holds the per-feature training standard deviations, with
	// constant features clamped to one.
	Stds []float64 `json:"stds"`
}

// Fit estimates the per-feature mean and standard deviation.
func (s *StandardScaler) Fit(x *mat.Dense) error {
	if x == nil {
		return ErrNoTrainingData
	}
	rows, cols := x.Dims()
	if rows == 0 {
		return ErrNoTrainingData
	}

	s.Means = make([]float64, cols)
	s.Stds = make([]float64, cols)

	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Means[j] = mean
		s.Stds[j] = std
	}

	return nil
}

// Transform returns a new matrix with every feature standardized by the
// fitted parameters.
func (s *StandardScaler) Transform(x *mat.Dense) (*mat.Dense, error) {
	if len(s.Means) == 0 {
		return nil, ErrNotFitted
	}
	if x == nil {
		return nil, fmt.Errorf("%w: nil input", ErrDimensionMismatch)
	}
	rows, cols := x.Dims()
	if cols != len(s.Means) {
		return nil, fmt.Errorf("%w: input has %d features, scaler was fitted on %d", ErrDimensionMismatch, cols, len(s.Means))
	}

	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		dst := out.RawRowView(i)
		for j, v := range row {
			dst[j] = (v - s.Means[j]) / s.Stds[j]
		}
	}

	return out, nil
}

// TransformVector standardizes a single feature vector, returning a new
// slice.
func (s *StandardScaler) TransformVector(v []float64) ([]float64, error) {
	if len(s.Means) == 0 {
		return nil, ErrNotFitted
	}
	if len(v) != len(s.Means) {
		return nil, fmt.Errorf("%w: vector has %d features, scaler was fitted on %d", ErrDimensionMismatch, len(v), len(s.Means))
	}

	out := make([]float64, len(v))
	for j, x := range v {
		out[j] = (x - s.Means[j]) / s.Stds[j]
	}

	return out, nil
}

// FitTransform fits the scaler and returns the standardized training
// matrix.
func (s *StandardScaler) FitTransform(x *mat.Dense) (*mat.Dense, error) {
	if err := s.Fit(x); err != nil {
		return nil, err
	}

	return s.Transform(x)
}
