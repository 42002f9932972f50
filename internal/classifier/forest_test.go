package classifier_test

import (
	"encoding/json"
	"testing"

	"imgclass/internal/classifier"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestForest_Predict(t *testing.T) {
	x, y := twoClusters()

	m := classifier.NewForest(classifier.ForestConfig{Trees: 25, Seed: 1})
	require.NoError(t, m.Fit(x, y))

	got, err := m.Predict(x)
	require.NoError(t, err)
	require.Equal(t, y, got, "forest should separate the training clusters")

	queries := mat.NewDense(2, 2, []float64{
		0.5, 0.5,
		5.5, 5.5,
	})
	got, err = m.Predict(queries)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, got)

	scores, err := m.Scores(queries)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		require.InDelta(t, 1.0, scores.At(i, 0)+scores.At(i, 1), 1e-12, "vote fractions sum to one")
	}
	require.Greater(t, scores.At(0, 0), 0.5)
	require.Greater(t, scores.At(1, 1), 0.5)
}

func TestForest_Deterministic(t *testing.T) {
	x, y := twoClusters()
	queries := mat.NewDense(3, 2, []float64{0.4, 0.1, 3, 3, 5.8, 5.1})

	score := func() *mat.Dense {
		m := classifier.NewForest(classifier.ForestConfig{Trees: 15, MaxDepth: 4, Seed: 42})
		require.NoError(t, m.Fit(x, y))
		s, err := m.Scores(queries)
		require.NoError(t, err)

		return s
	}

	require.True(t, mat.Equal(score(), score()), "same data and seed must grow the same forest")
}

func TestForest_SingleClass(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	y := []int{0, 0, 0, 0}

	m := classifier.NewForest(classifier.ForestConfig{Trees: 5, Seed: 7})
	require.NoError(t, m.Fit(x, y))

	got, err := m.Predict(mat.NewDense(1, 2, []float64{100, 100}))
	require.NoError(t, err)
	require.Equal(t, []int{0}, got)

	scores, err := m.Scores(mat.NewDense(1, 2, []float64{0, 0}))
	require.NoError(t, err)
	require.Equal(t, 1.0, scores.At(0, 0))
}

func TestForest_DepthLimit(t *testing.T) {
	x, y := twoClusters()

	m := classifier.NewForest(classifier.ForestConfig{Trees: 10, MaxDepth: 1, Seed: 3})
	require.NoError(t, m.Fit(x, y))

	// stumps still separate two distant clusters
	got, err := m.Predict(x)
	require.NoError(t, err)
	require.Equal(t, y, got)
}

func TestForest_Errors(t *testing.T) {
	x, y := twoClusters()

	t.Run("no trees", func(t *testing.T) {
		m := classifier.NewForest(classifier.ForestConfig{Trees: 0})
		require.ErrorIs(t, m.Fit(x, y), classifier.ErrBadConfig)
	})

	t.Run("negative depth", func(t *testing.T) {
		m := classifier.NewForest(classifier.ForestConfig{Trees: 5, MaxDepth: -1})
		require.ErrorIs(t, m.Fit(x, y), classifier.ErrBadConfig)
	})

	t.Run("negative min leaf", func(t *testing.T) {
		m := classifier.NewForest(classifier.ForestConfig{Trees: 5, MinLeaf: -1})
		require.ErrorIs(t, m.Fit(x, y), classifier.ErrBadConfig)
	})

	t.Run("nil matrix", func(t *testing.T) {
		m := classifier.NewForest(classifier.ForestConfig{Trees: 5})
		require.ErrorIs(t, m.Fit(nil, nil), classifier.ErrNoTrainingData)
	})

	t.Run("predict before fit", func(t *testing.T) {
		m := classifier.NewForest(classifier.ForestConfig{Trees: 5})
		_, err := m.Predict(mat.NewDense(1, 2, nil))
		require.ErrorIs(t, err, classifier.ErrNotFitted)
	})

	t.Run("predict wrong width", func(t *testing.T) {
		m := classifier.NewForest(classifier.ForestConfig{Trees: 5, Seed: 1})
		require.NoError(t, m.Fit(x, y))
		_, err := m.Predict(mat.NewDense(1, 5, nil))
		require.ErrorIs(t, err, classifier.ErrDimensionMismatch)
	})
}

func TestForest_JSONRoundtrip(t *testing.T) {
	x, y := twoClusters()

	m := classifier.NewForest(classifier.ForestConfig{Trees: 12, MaxDepth: 3, MinLeaf: 1, Seed: 9})
	require.NoError(t, m.Fit(x, y))

	data, err := json.Marshal(m)
	require.NoError(t, err)

	restored := &classifier.Forest{}
	require.NoError(t, json.Unmarshal(data, restored))

	queries := mat.NewDense(3, 2, []float64{0, 0, 2.5, 2.5, 6, 6})
	want, err := m.Scores(queries)
	require.NoError(t, err)
	got, err := restored.Scores(queries)
	require.NoError(t, err)
	require.True(t, mat.Equal(want, got))
}
