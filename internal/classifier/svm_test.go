package classifier_test

import (
	"encoding/json"
	"testing"

	"imgclass/internal/classifier"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// separable2D builds two tight clusters far apart on the first axis.
func separable2D() (*mat.Dense, []int) {
	x := mat.NewDense(8, 2, []float64{
		-5, 0.2,
		-5.3, -0.1,
		-4.8, 0.4,
		-5.1, -0.3,
		5, 0.1,
		5.2, -0.2,
		4.9, 0.3,
		5.4, -0.4,
	})

	return x, []int{0, 0, 0, 0, 1, 1, 1, 1}
}

func TestSVM_Predict(t *testing.T) {
	x, y := separable2D()

	m := classifier.NewSVM(classifier.SVMConfig{Lambda: 0.1, Epochs: 200, Seed: 1})
	require.NoError(t, m.Fit(x, y))

	got, err := m.Predict(x)
	require.NoError(t, err)
	require.Equal(t, y, got, "separable clusters should be fit exactly")

	queries := mat.NewDense(2, 2, []float64{
		-8, 0,
		8, 0,
	})
	got, err = m.Predict(queries)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, got)

	scores, err := m.Scores(queries)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		require.InDelta(t, 1.0, scores.At(i, 0)+scores.At(i, 1), 1e-12, "softmax rows sum to one")
	}
	require.Greater(t, scores.At(0, 0), 0.5)
	require.Greater(t, scores.At(1, 1), 0.5)
}

func TestSVM_ThreeClasses(t *testing.T) {
	x := mat.NewDense(9, 2, []float64{
		0, 0,
		0.3, 0.1,
		-0.2, 0.2,
		15, 0,
		15.2, 0.3,
		14.8, -0.1,
		0, 15,
		0.2, 15.3,
		-0.3, 14.9,
	})
	y := []int{0, 0, 0, 1, 1, 1, 2, 2, 2}

	m := classifier.NewSVM(classifier.SVMConfig{Lambda: 0.05, Epochs: 300, Seed: 7})
	require.NoError(t, m.Fit(x, y))

	got, err := m.Predict(mat.NewDense(3, 2, []float64{
		0, 0,
		15, 0,
		0, 15,
	}))
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2}, got)
}

func TestSVM_Deterministic(t *testing.T) {
	x, y := separable2D()
	queries := mat.NewDense(2, 2, []float64{-1, 1, 2, -2})

	score := func() *mat.Dense {
		m := classifier.NewSVM(classifier.SVMConfig{Lambda: 0.1, Epochs: 50, Seed: 11})
		require.NoError(t, m.Fit(x, y))
		s, err := m.Scores(queries)
		require.NoError(t, err)

		return s
	}

	require.True(t, mat.Equal(score(), score()), "same data and seed must fit the same weights")
}

func TestSVM_Errors(t *testing.T) {
	x, y := separable2D()

	t.Run("bad lambda", func(t *testing.T) {
		m := classifier.NewSVM(classifier.SVMConfig{Lambda: 0, Epochs: 10})
		require.ErrorIs(t, m.Fit(x, y), classifier.ErrBadConfig)
	})

	t.Run("bad epochs", func(t *testing.T) {
		m := classifier.NewSVM(classifier.SVMConfig{Lambda: 0.1, Epochs: 0})
		require.ErrorIs(t, m.Fit(x, y), classifier.ErrBadConfig)
	})

	t.Run("nil matrix", func(t *testing.T) {
		m := classifier.NewSVM(classifier.SVMConfig{Lambda: 0.1, Epochs: 10})
		require.ErrorIs(t, m.Fit(nil, nil), classifier.ErrNoTrainingData)
	})

	t.Run("predict before fit", func(t *testing.T) {
		m := classifier.NewSVM(classifier.SVMConfig{Lambda: 0.1, Epochs: 10})
		_, err := m.Predict(mat.NewDense(1, 2, nil))
		require.ErrorIs(t, err, classifier.ErrNotFitted)
	})

	t.Run("predict wrong width", func(t *testing.T) {
		m := classifier.NewSVM(classifier.SVMConfig{Lambda: 0.1, Epochs: 10, Seed: 1})
		require.NoError(t, m.Fit(x, y))
		_, err := m.Predict(mat.NewDense(1, 4, nil))
		require.ErrorIs(t, err, classifier.ErrDimensionMismatch)
	})
}

func TestSVM_JSONRoundtrip(t *testing.T) {
	x, y := separable2D()

	m := classifier.NewSVM(classifier.SVMConfig{Lambda: 0.1, Epochs: 80, Seed: 5})
	require.NoError(t, m.Fit(x, y))

	data, err := json.Marshal(m)
	require.NoError(t, err)

	restored := &classifier.SVM{}
	require.NoError(t, json.Unmarshal(data, restored))

	queries := mat.NewDense(2, 2, []float64{-6, 1, 6, -1})
	want, err := m.Scores(queries)
	require.NoError(t, err)
	got, err := restored.Scores(queries)
	require.NoError(t, err)
	require.True(t, mat.Equal(want, got))
}
