package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SVMConfig holds the linear-SVM hyperparameters.
type SVMConfig struct {
	// Lambda is the regularization strength, > 0.
	Lambda float64 `json:"lambda"`
	// Epochs is the number of SGD passes over the training data.
	Epochs int `json:"epochs"`
	// Seed drives the SGD shuffle order.
	Seed int64 `json:"seed"`
}

// SVM is a linear support vector machine trained one-vs-rest with
// Pegasos-style stochastic subgradient descent on the hinge loss. Scores
// are a softmax over the per-class margins.
type SVM struct {
	cfg SVMConfig

	weights  [][]float64
	bias     []float64
	classes  int
	features int
}

// NewSVM returns an unfitted linear SVM.
func NewSVM(cfg SVMConfig) *SVM {
	return &SVM{cfg: cfg}
}

// Fit trains one binary hinge-loss separator per class. Given the same
// data and seed the fitted weights are identical.
func (m *SVM) Fit(x *mat.Dense, y []int) error {
	if m.cfg.Lambda <= 0 {
		return fmt.Errorf("%w: lambda must be positive, got %v", ErrBadConfig, m.cfg.Lambda)
	}
	if m.cfg.Epochs < 1 {
		return fmt.Errorf("%w: epochs must be at least 1, got %d", ErrBadConfig, m.cfg.Epochs)
	}

	rows, cols, classes, err := checkTrainingData(x, y)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(m.cfg.Seed)) //nolint: gosec

	weights := make([][]float64, classes)
	bias := make([]float64, classes)
	for c := range weights {
		w := make([]float64, cols)
		b := 0.0

		step := 0
		for epoch := 0; epoch < m.cfg.Epochs; epoch++ {
			for _, i := range rng.Perm(rows) {
				step++
				eta := 1 / (m.cfg.Lambda * float64(step))

				target := -1.0
				if y[i] == c {
					target = 1
				}
				row := x.RawRowView(i)
				margin := target * (floats.Dot(w, row) + b)

				floats.Scale(1-eta*m.cfg.Lambda, w)
				if margin < 1 {
					floats.AddScaled(w, eta*target, row)
					b += eta * target
				}
			}
		}

		weights[c] = w
		bias[c] = b
	}

	m.weights = weights
	m.bias = bias
	m.classes = classes
	m.features = cols

	return nil
}

// Predict returns the label with the largest margin for every row of X.
func (m *SVM) Predict(x *mat.Dense) ([]int, error) {
	scores, err := m.Scores(x)
	if err != nil {
		return nil, err
	}

	return predictFromScores(scores), nil
}

// Scores returns the softmax over per-class margins for every row of X.
func (m *SVM) Scores(x *mat.Dense) (*mat.Dense, error) {
	if m.weights == nil {
		return nil, ErrNotFitted
	}

	rows, err := checkPredictInput(x, m.features)
	if err != nil {
		return nil, err
	}

	out := mat.NewDense(rows, m.classes, nil)
	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		dst := out.RawRowView(i)
		for c := range dst {
			dst[c] = floats.Dot(m.weights[c], row) + m.bias[c]
		}
		softmax(dst)
	}

	return out, nil
}

// softmax normalizes margins in place, shifted by the maximum for
// numerical stability.
func softmax(v []float64) {
	max := v[argmax(v)]
	sum := 0.0
	for i := range v {
		v[i] = math.Exp(v[i] - max)
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
}

type svmState struct {
	Config   SVMConfig   `json:"config"`
	Classes  int         `json:"classes"`
	Features int         `json:"features"`
	Weights  [][]float64 `json:"weights"`
	Bias     []float64   `json:"bias"`
}

// MarshalJSON implements json.Marshaler; the model must be fitted.
func (m *SVM) MarshalJSON() ([]byte, error) {
	if m.weights == nil {
		return nil, ErrNotFitted
	}

	return json.Marshal(svmState{
		Config:   m.cfg,
		Classes:  m.classes,
		Features: m.features,
		Weights:  m.weights,
		Bias:     m.bias,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *SVM) UnmarshalJSON(data []byte) error {
	var state svmState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if len(state.Weights) == 0 {
		return ErrNotFitted
	}
	for c, w := range state.Weights {
		if len(w) != state.Features {
			return fmt.Errorf("%w: class %d has %d weights, want %d", ErrDimensionMismatch, c, len(w), state.Features)
		}
	}
	if len(state.Bias) != len(state.Weights) {
		return fmt.Errorf("%w: %d weight rows but %d biases", ErrDimensionMismatch, len(state.Weights), len(state.Bias))
	}

	m.cfg = state.Config
	m.classes = state.Classes
	m.features = state.Features
	m.weights = state.Weights
	m.bias = state.Bias

	return nil
}
