package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ForestConfig holds the random-forest hyperparameters.
type ForestConfig struct {
	// Trees is the ensemble size.
	Trees int `json:"trees"`
	// MaxDepth limits tree depth; 0 means unlimited.
	MaxDepth int `json:"maxDepth"`
	// MinLeaf is the minimum number of samples per leaf; 0 means 1.
	MinLeaf int `json:"minLeaf"`
	// Seed drives bootstrap sampling and feature subsampling.
	Seed int64 `json:"seed"`
}

// Forest is a random forest of CART trees grown with the Gini criterion.
// Each tree is fitted on a bootstrap sample and considers sqrt(d) features
// per split. Scores are the fraction of trees voting for each class.
type Forest struct {
	cfg ForestConfig

	trees    []decisionTree
	classes  int
	features int
}

// NewForest returns an unfitted random forest.
func NewForest(cfg ForestConfig) *Forest {
	return &Forest{cfg: cfg}
}

// Fit grows the ensemble. Given the same data and seed the resulting
// forest is identical.
func (m *Forest) Fit(x *mat.Dense, y []int) error {
	if m.cfg.Trees < 1 {
		return fmt.Errorf("%w: trees must be at least 1, got %d", ErrBadConfig, m.cfg.Trees)
	}
	if m.cfg.MaxDepth < 0 {
		return fmt.Errorf("%w: maxDepth must not be negative, got %d", ErrBadConfig, m.cfg.MaxDepth)
	}
	if m.cfg.MinLeaf < 0 {
		return fmt.Errorf("%w: minLeaf must not be negative, got %d", ErrBadConfig, m.cfg.MinLeaf)
	}

	rows, cols, classes, err := checkTrainingData(x, y)
	if err != nil {
		return err
	}

	minLeaf := m.cfg.MinLeaf
	if minLeaf == 0 {
		minLeaf = 1
	}
	mtry := int(math.Sqrt(float64(cols)))
	if mtry < 1 {
		mtry = 1
	}
	cfg := growConfig{
		maxDepth: m.cfg.MaxDepth,
		minLeaf:  minLeaf,
		mtry:     mtry,
		classes:  classes,
	}

	rng := rand.New(rand.NewSource(m.cfg.Seed)) //nolint: gosec
	trees := make([]decisionTree, m.cfg.Trees)
	for i := range trees {
		treeRng := rand.New(rand.NewSource(rng.Int63())) //nolint: gosec

		sample := make([]int, rows)
		for j := range sample {
			sample[j] = treeRng.Intn(rows)
		}
		trees[i].grow(x, y, sample, 0, cfg, treeRng)
	}

	m.trees = trees
	m.classes = classes
	m.features = cols

	return nil
}

// Predict returns the majority-vote label for every row of X.
func (m *Forest) Predict(x *mat.Dense) ([]int, error) {
	scores, err := m.Scores(x)
	if err != nil {
		return nil, err
	}

	return predictFromScores(scores), nil
}

// Scores returns the fraction of trees voting for each class, per row.
func (m *Forest) Scores(x *mat.Dense) (*mat.Dense, error) {
	if m.trees == nil {
		return nil, ErrNotFitted
	}

	rows, err := checkPredictInput(x, m.features)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, m.classes, nil)
	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		votes := out.RawRowView(i)
		for t := range m.trees {
			votes[argmax(m.trees[t].predictCounts(row))]++
		}
		for c := range votes {
			votes[c] /= float64(len(m.trees))
		}
	}

	return out, nil
}

type forestState struct {
	Config   ForestConfig   `json:"config"`
	Classes  int            `json:"classes"`
	Features int            `json:"features"`
	Trees    []decisionTree `json:"trees"`
}

// MarshalJSON implements json.Marshaler; the model must be fitted.
func (m *Forest) MarshalJSON() ([]byte, error) {
	if m.trees == nil {
		return nil, ErrNotFitted
	}

	return json.Marshal(forestState{
		Config:   m.cfg,
		Classes:  m.classes,
		Features: m.features,
		Trees:    m.trees,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Forest) UnmarshalJSON(data []byte) error {
	var state forestState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if len(state.Trees) == 0 {
		return ErrNotFitted
	}

	m.cfg = state.Config
	m.classes = state.Classes
	m.features = state.Features
	m.trees = state.Trees

	return nil
}
