package classifier_test

import (
	"encoding/json"
	"testing"

	"imgclass/internal/classifier"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// twoClusters is a cleanly separable two-class toy set.
func twoClusters() (*mat.Dense, []int) {
	x := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		5, 5,
		5, 6,
		6, 5,
	})

	return x, []int{0, 0, 0, 1, 1, 1}
}

func TestKNN_Predict(t *testing.T) {
	x, y := twoClusters()

	m := classifier.NewKNN(classifier.KNNConfig{K: 3})
	require.NoError(t, m.Fit(x, y))

	queries := mat.NewDense(2, 2, []float64{
		0.2, 0.2,
		5.5, 5.5,
	})
	got, err := m.Predict(queries)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, got)

	scores, err := m.Scores(queries)
	require.NoError(t, err)
	require.Equal(t, 1.0, scores.At(0, 0), "all three neighbors agree")
	require.Equal(t, 0.0, scores.At(0, 1))
	require.Equal(t, 1.0, scores.At(1, 1))
}

func TestKNN_DistanceWeights(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		0, 0,
		0.1, 0,
		1, 1,
	})
	y := []int{0, 0, 1}
	query := mat.NewDense(1, 2, []float64{1, 1})

	uniform := classifier.NewKNN(classifier.KNNConfig{K: 3, Weights: classifier.WeightsUniform})
	require.NoError(t, uniform.Fit(x, y))
	got, err := uniform.Predict(query)
	require.NoError(t, err)
	require.Equal(t, []int{0}, got, "uniform voting favors the two distant neighbors")

	weighted := classifier.NewKNN(classifier.KNNConfig{K: 3, Weights: classifier.WeightsDistance})
	require.NoError(t, weighted.Fit(x, y))
	got, err = weighted.Predict(query)
	require.NoError(t, err)
	require.Equal(t, []int{1}, got, "the coincident neighbor dominates inverse-distance voting")

	scores, err := weighted.Scores(query)
	require.NoError(t, err)
	require.InDelta(t, 1.0, scores.At(0, 1), 1e-9)
}

func TestKNN_TieBreaksTowardLowerClass(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{
		1, 0,
		-1, 0,
	})
	y := []int{0, 1}

	m := classifier.NewKNN(classifier.KNNConfig{K: 2})
	require.NoError(t, m.Fit(x, y))

	got, err := m.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	require.NoError(t, err)
	require.Equal(t, []int{0}, got)
}

func TestKNN_KLargerThanTrainingSet(t *testing.T) {
	x, y := twoClusters()

	m := classifier.NewKNN(classifier.KNNConfig{K: 50})
	require.NoError(t, m.Fit(x, y))

	got, err := m.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	require.NoError(t, err)
	require.Equal(t, []int{0}, got, "k clamps to the training size, votes tie, lower class wins")
}

func TestKNN_Errors(t *testing.T) {
	x, y := twoClusters()

	t.Run("bad k", func(t *testing.T) {
		m := classifier.NewKNN(classifier.KNNConfig{K: 0})
		require.ErrorIs(t, m.Fit(x, y), classifier.ErrBadConfig)
	})

	t.Run("unknown weights", func(t *testing.T) {
		m := classifier.NewKNN(classifier.KNNConfig{K: 3, Weights: "quadratic"})
		require.ErrorIs(t, m.Fit(x, y), classifier.ErrBadConfig)
	})

	t.Run("nil matrix", func(t *testing.T) {
		m := classifier.NewKNN(classifier.KNNConfig{K: 3})
		require.ErrorIs(t, m.Fit(nil, nil), classifier.ErrNoTrainingData)
	})

	t.Run("label count mismatch", func(t *testing.T) {
		m := classifier.NewKNN(classifier.KNNConfig{K: 3})
		require.ErrorIs(t, m.Fit(x, []int{0, 1}), classifier.ErrDimensionMismatch)
	})

	t.Run("negative label", func(t *testing.T) {
		m := classifier.NewKNN(classifier.KNNConfig{K: 3})
		require.ErrorIs(t, m.Fit(x, []int{0, 0, 0, 1, 1, -1}), classifier.ErrBadLabel)
	})

	t.Run("predict before fit", func(t *testing.T) {
		m := classifier.NewKNN(classifier.KNNConfig{K: 3})
		_, err := m.Predict(mat.NewDense(1, 2, nil))
		require.ErrorIs(t, err, classifier.ErrNotFitted)
	})

	t.Run("predict wrong width", func(t *testing.T) {
		m := classifier.NewKNN(classifier.KNNConfig{K: 3})
		require.NoError(t, m.Fit(x, y))
		_, err := m.Predict(mat.NewDense(1, 3, nil))
		require.ErrorIs(t, err, classifier.ErrDimensionMismatch)
	})
}

func TestKNN_JSONRoundtrip(t *testing.T) {
	x, y := twoClusters()

	m := classifier.NewKNN(classifier.KNNConfig{K: 3, Weights: classifier.WeightsDistance})
	require.NoError(t, m.Fit(x, y))

	data, err := json.Marshal(m)
	require.NoError(t, err)

	restored := &classifier.KNN{}
	require.NoError(t, json.Unmarshal(data, restored))

	queries := mat.NewDense(2, 2, []float64{0.3, 0.4, 5.2, 5.9})
	want, err := m.Scores(queries)
	require.NoError(t, err)
	got, err := restored.Scores(queries)
	require.NoError(t, err)
	require.True(t, mat.Equal(want, got))
}

func TestKNN_MarshalUnfitted(t *testing.T) {
	_, err := json.Marshal(classifier.NewKNN(classifier.KNNConfig{K: 3}))
	require.ErrorIs(t, err, classifier.ErrNotFitted)
}
