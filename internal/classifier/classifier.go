// Package classifier implements the three classical families the benchmark
// searches over: k-nearest-neighbors, random forests of CART trees and
// linear one-vs-rest support vector machines.
//
// Every family satisfies the same Estimator contract on gonum matrices:
// Fit trains on an n x d matrix with one label index per row, Predict
// returns a label index per row and Scores returns a normalized per-class
// score row per input. Label indices are assigned by the caller; ties in
// Predict always break toward the lower index, so callers that index
// sorted label names get lexicographic tie-breaking. Fitted models
// marshal to JSON and back through the Model envelope.
package classifier

import (
	"encoding/json"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors shared by all classifier families.
var (
	// ErrNotFitted is returned when Predict, Scores or serialization is
	// attempted on a model that has not been fitted.
	ErrNotFitted = errors.New("classifier: model is not fitted")

	// ErrDimensionMismatch is returned when matrix and label shapes
	// disagree, or a prediction input has the wrong number of columns.
	ErrDimensionMismatch = errors.New("classifier: dimension mismatch")

	// ErrNoTrainingData is returned by Fit when the training matrix has no
	// rows.
	ErrNoTrainingData = errors.New("classifier: no training data")

	// ErrBadLabel is returned by Fit when a label index is negative.
	ErrBadLabel = errors.New("classifier: negative label index")

	// ErrBadConfig is returned by Fit when a hyperparameter is out of its
	// valid range.
	ErrBadConfig = errors.New("classifier: invalid hyperparameter")
)

// Families searched by the benchmark.
const (
	FamilyKNN    = "knn"
	FamilyForest = "forest"
	FamilySVM    = "svm"
)

// Estimator is the contract every classifier family implements.
type Estimator interface {
	// Fit trains the model on X (n rows, d features) with one label index
	// per row. Label indices must be non-negative; the number of classes is
	// taken to be the largest index plus one.
	Fit(x *mat.Dense, y []int) error

	// Predict returns the predicted label index for every row of X.
	Predict(x *mat.Dense) ([]int, error)

	// Scores returns one row of per-class scores for every row of X.
	// Each row is normalized to sum to one.
	Scores(x *mat.Dense) (*mat.Dense, error)
}

// checkTrainingData validates a Fit input and derives the class count.
func checkTrainingData(x *mat.Dense, y []int) (rows, cols, classes int, err error) {
	if x == nil {
		return 0, 0, 0, ErrNoTrainingData
	}

	rows, cols = x.Dims()
	if rows == 0 {
		return 0, 0, 0, ErrNoTrainingData
	}
	if len(y) != rows {
		return 0, 0, 0, fmt.Errorf("%w: %d rows but %d labels", ErrDimensionMismatch, rows, len(y))
	}

	for i, label := range y {
		if label < 0 {
			return 0, 0, 0, fmt.Errorf("%w: row %d", ErrBadLabel, i)
		}
		if label+1 > classes {
			classes = label + 1
		}
	}

	return rows, cols, classes, nil
}

// checkPredictInput validates a Predict/Scores input against the fitted
// feature count.
func checkPredictInput(x *mat.Dense, features int) (rows int, err error) {
	if x == nil {
		return 0, fmt.Errorf("%w: nil input", ErrDimensionMismatch)
	}

	rows, cols := x.Dims()
	if cols != features {
		return 0, fmt.Errorf("%w: input has %d features, model was fitted on %d", ErrDimensionMismatch, cols, features)
	}

	return rows, nil
}

// argmax returns the index of the largest value, breaking ties toward the
// lower index.
func argmax(row []float64) int {
	best := 0
	for j := 1; j < len(row); j++ {
		if row[j] > row[best] {
			best = j
		}
	}

	return best
}

// predictFromScores maps each score row to its argmax label.
func predictFromScores(scores *mat.Dense) []int {
	rows, _ := scores.Dims()
	out := make([]int, rows)
	for i := range out {
		out[i] = argmax(scores.RawRowView(i))
	}

	return out
}

// matrixRows copies the rows of a matrix into plain slices, for
// serialization.
func matrixRows(x *mat.Dense) [][]float64 {
	rows, _ := x.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = append([]float64(nil), x.RawRowView(i)...)
	}

	return out
}

// rowsMatrix rebuilds a matrix from serialized rows.
func rowsMatrix(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 {
		return nil, ErrNoTrainingData
	}

	cols := len(rows[0])
	out := mat.NewDense(len(rows), cols, nil)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(row), cols)
		}
		out.SetRow(i, row)
	}

	return out, nil
}

// Model wraps a fitted estimator of any family for storage. It marshals to
// a JSON envelope carrying the family name, so the concrete type can be
// rebuilt on load.
type Model struct {
	Family    string
	Estimator Estimator
}

// NewModel wraps an estimator, deriving its family name.
func NewModel(est Estimator) (Model, error) {
	switch est.(type) {
	case *KNN:
		return Model{Family: FamilyKNN, Estimator: est}, nil
	case *Forest:
		return Model{Family: FamilyForest, Estimator: est}, nil
	case *SVM:
		return Model{Family: FamilySVM, Estimator: est}, nil
	default:
		return Model{}, fmt.Errorf("%w: unknown estimator type %T", ErrBadConfig, est)
	}
}

type modelEnvelope struct {
	Family    string          `json:"family"`
	Estimator json.RawMessage `json:"estimator"`
}

// MarshalJSON implements json.Marshaler.
func (m Model) MarshalJSON() ([]byte, error) {
	if m.Estimator == nil {
		return nil, ErrNotFitted
	}

	raw, err := json.Marshal(m.Estimator)
	if err != nil {
		return nil, err
	}

	return json.Marshal(modelEnvelope{Family: m.Family, Estimator: raw})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Model) UnmarshalJSON(data []byte) error {
	var env modelEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	var est Estimator
	switch env.Family {
	case FamilyKNN:
		est = &KNN{}
	case FamilyForest:
		est = &Forest{}
	case FamilySVM:
		est = &SVM{}
	default:
		return fmt.Errorf("%w: unknown family %q", ErrBadConfig, env.Family)
	}

	if err := json.Unmarshal(env.Estimator, est); err != nil {
		return err
	}

	m.Family = env.Family
	m.Estimator = est

	return nil
}
