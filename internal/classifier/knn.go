package classifier

import (
	"encoding/json"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Vote weighting schemes for KNN.
const (
	// WeightsUniform gives every neighbor one vote.
	WeightsUniform = "uniform"
	// WeightsDistance weights each neighbor's vote by inverse distance.
	WeightsDistance = "distance"
)

// distanceEpsilon keeps inverse-distance weights finite when a query
// coincides with a training point.
const distanceEpsilon = 1e-12

// KNNConfig holds the k-nearest-neighbors hyperparameters.
type KNNConfig struct {
	// K is the number of neighbors consulted per prediction.
	K int `json:"k"`
	// Weights selects the vote weighting scheme; empty means uniform.
	Weights string `json:"weights"`
}

// KNN is a brute-force k-nearest-neighbors classifier with euclidean
// distance. Fitting memorizes the training data; prediction scans it.
type KNN struct {
	cfg KNNConfig

	x       *mat.Dense
	y       []int
	classes int
}

// NewKNN returns an unfitted k-nearest-neighbors classifier.
func NewKNN(cfg KNNConfig) *KNN {
	if cfg.Weights == "" {
		cfg.Weights = WeightsUniform
	}

	return &KNN{cfg: cfg}
}

// Fit memorizes the training matrix and labels.
func (m *KNN) Fit(x *mat.Dense, y []int) error {
	if m.cfg.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrBadConfig, m.cfg.K)
	}
	if m.cfg.Weights != WeightsUniform && m.cfg.Weights != WeightsDistance {
		return fmt.Errorf("%w: unknown weights %q", ErrBadConfig, m.cfg.Weights)
	}

	rows, cols, classes, err := checkTrainingData(x, y)
	if err != nil {
		return err
	}

	m.x = mat.NewDense(rows, cols, nil)
	m.x.Copy(x)
	m.y = append([]int(nil), y...)
	m.classes = classes

	return nil
}

// Predict returns the majority-vote label for every row of X.
func (m *KNN) Predict(x *mat.Dense) ([]int, error) {
	scores, err := m.Scores(x)
	if err != nil {
		return nil, err
	}

	return predictFromScores(scores), nil
}

// Scores returns the normalized vote share of every class for every row
// of X.
func (m *KNN) Scores(x *mat.Dense) (*mat.Dense, error) {
	if m.x == nil {
		return nil, ErrNotFitted
	}

	_, features := m.x.Dims()
	rows, err := checkPredictInput(x, features)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, m.classes, nil)
	for i := 0; i < rows; i++ {
		m.scoreRow(x.RawRowView(i), out.RawRowView(i))
	}

	return out, nil
}

// scoreRow computes the vote shares for one query point.
func (m *KNN) scoreRow(query, dst []float64) {
	n, _ := m.x.Dims()

	type neighbor struct {
		index    int
		distance float64
	}
	neighbors := make([]neighbor, n)
	for j := 0; j < n; j++ {
		neighbors[j] = neighbor{
			index:    j,
			distance: floats.Distance(query, m.x.RawRowView(j), 2),
		}
	}
	// stable on the training index so equidistant neighbors rank
	// deterministically
	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].distance < neighbors[b].distance
	})

	k := m.cfg.K
	if k > n {
		k = n
	}

	total := 0.0
	for _, nb := range neighbors[:k] {
		weight := 1.0
		if m.cfg.Weights == WeightsDistance {
			weight = 1 / (nb.distance + distanceEpsilon)
		}
		dst[m.y[nb.index]] += weight
		total += weight
	}
	for c := range dst {
		dst[c] /= total
	}
}

type knnState struct {
	Config  KNNConfig   `json:"config"`
	Classes int         `json:"classes"`
	X       [][]float64 `json:"x"`
	Y       []int       `json:"y"`
}

// MarshalJSON implements json.Marshaler; the model must be fitted.
func (m *KNN) MarshalJSON() ([]byte, error) {
	if m.x == nil {
		return nil, ErrNotFitted
	}

	return json.Marshal(knnState{
		Config:  m.cfg,
		Classes: m.classes,
		X:       matrixRows(m.x),
		Y:       m.y,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *KNN) UnmarshalJSON(data []byte) error {
	var state knnState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}

	x, err := rowsMatrix(state.X)
	if err != nil {
		return err
	}
	if len(state.Y) != len(state.X) {
		return fmt.Errorf("%w: %d rows but %d labels", ErrDimensionMismatch, len(state.X), len(state.Y))
	}

	m.cfg = state.Config
	m.classes = state.Classes
	m.x = x
	m.y = state.Y

	return nil
}
