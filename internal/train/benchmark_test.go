package train_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"imgclass/internal/classifier"
	"imgclass/internal/dataset"
	"imgclass/internal/features"
	"imgclass/internal/train"
	"imgclass/pkg/domain"
	"imgclass/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

var testFeatureNames = []string{"f1", "f2"}

// clusterVectors builds perClass samples per label, spread deterministically
// around well-separated centers.
func clusterVectors(perClass int, centers map[string][]float64) []domain.LabeledVector {
	labels := make([]string, 0, len(centers))
	for l := range centers {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	var out []domain.LabeledVector
	for _, label := range labels {
		for i := 0; i < perClass; i++ {
			values := make(domain.FeatureVector, len(centers[label]))
			for d, c := range centers[label] {
				values[d] = c + 0.1*float64(i%5)
			}
			out = append(out, domain.LabeledVector{
				Sample: domain.Sample{Path: fmt.Sprintf("%s-%02d.png", label, i), Label: label},
				Values: values,
			})
		}
	}

	return out
}

func knnSpec() domain.TrainSpec {
	return domain.TrainSpec{
		TestFraction: 0.25,
		Folds:        3,
		Seed:         42,
		TopK:         10,
		KNN:          domain.KNNGrid{K: []int{1, 3}, Weights: []string{classifier.WeightsUniform}},
	}
}

func TestBenchmark_SeparableClusters(t *testing.T) {
	vectors := clusterVectors(16, map[string][]float64{"lake": {0, 0}, "rock": {50, 50}})

	res, err := train.Benchmark(context.Background(), vectors, testFeatureNames, 3, knnSpec())
	require.NoError(t, err)

	report := res.Report
	require.Equal(t, 32, report.Dataset.Images)
	require.Equal(t, 3, report.Dataset.Skipped)
	require.Equal(t, []string{"lake", "rock"}, report.Dataset.Classes)
	require.Equal(t, map[string]int{"lake": 16, "rock": 16}, report.Dataset.PerClass)
	require.Equal(t, 2, report.Dataset.Features)

	require.Len(t, report.Leaderboard, 2)
	require.Equal(t, 1.0, report.Winner.CVAccuracy)
	// equal scores keep grid order, so the first knn combination wins
	require.Equal(t, "knn", report.Winner.Family)
	require.Equal(t, "1", report.Winner.Params["k"])

	require.Len(t, report.BestPerFamily, 1)
	require.Equal(t, "knn", report.BestPerFamily[0].Family)

	require.Equal(t, 1.0, report.Test.Accuracy)
	require.Equal(t, [][]int{{4, 0}, {0, 4}}, report.Test.Confusion)

	art := res.Artifact
	require.NotNil(t, art)
	require.Equal(t, testFeatureNames, art.FeatureNames)
	require.Equal(t, []string{"lake", "rock"}, art.Labels)
	require.Len(t, art.Scaler.Means, 2)
	require.Equal(t, classifier.FamilyKNN, art.Model.Family)
	require.Equal(t, report, art.Report)

	pred, err := art.Predict(domain.FeatureVector{50, 50})
	require.NoError(t, err)
	require.Equal(t, "rock", pred.Class)
	require.Equal(t, 1.0, pred.Confidence)
}

func TestBenchmark_TieBreaksByFamilyThenGridOrder(t *testing.T) {
	vectors := clusterVectors(16, map[string][]float64{"lake": {0, 0}, "rock": {50, 50}})

	spec := domain.TrainSpec{
		TestFraction: 0.25,
		Folds:        3,
		Seed:         42,
		TopK:         10,
		KNN:          domain.KNNGrid{K: []int{1}, Weights: []string{classifier.WeightsUniform}},
		Forest:       domain.ForestGrid{Trees: []int{10}, MaxDepth: []int{0}, MinLeaf: []int{1}},
		SVM:          domain.SVMGrid{Lambda: []float64{0.01}, Epochs: []int{100}},
	}

	res, err := train.Benchmark(context.Background(), vectors, testFeatureNames, 0, spec)
	require.NoError(t, err)

	// all three families separate these clusters perfectly; the alphabetically
	// first family was evaluated first and keeps the top spot
	for _, c := range res.Report.Leaderboard {
		require.Equal(t, 1.0, c.CVAccuracy)
	}
	require.Equal(t, "forest", res.Report.Winner.Family)

	families := make([]string, len(res.Report.BestPerFamily))
	for i, c := range res.Report.BestPerFamily {
		families[i] = c.Family
	}
	require.Equal(t, []string{"forest", "knn", "svm"}, families)
}

func TestBenchmark_TopKCapsLeaderboard(t *testing.T) {
	vectors := clusterVectors(16, map[string][]float64{"lake": {0, 0}, "rock": {50, 50}})

	spec := knnSpec()
	spec.TopK = 1

	res, err := train.Benchmark(context.Background(), vectors, testFeatureNames, 0, spec)
	require.NoError(t, err)
	require.Len(t, res.Report.Leaderboard, 1)
}

func TestBenchmark_Deterministic(t *testing.T) {
	first, err := train.Benchmark(context.Background(),
		clusterVectors(16, map[string][]float64{"lake": {0, 0}, "rock": {50, 50}}),
		testFeatureNames, 0, knnSpec())
	require.NoError(t, err)

	second, err := train.Benchmark(context.Background(),
		clusterVectors(16, map[string][]float64{"lake": {0, 0}, "rock": {50, 50}}),
		testFeatureNames, 0, knnSpec())
	require.NoError(t, err)

	require.Equal(t, first.Report, second.Report)
}

func TestBenchmark_SingleClass(t *testing.T) {
	vectors := clusterVectors(16, map[string][]float64{"only": {1, 2}})

	res, err := train.Benchmark(context.Background(), vectors, testFeatureNames, 0, knnSpec())
	require.NoError(t, err)

	require.Equal(t, []string{"only"}, res.Report.Dataset.Classes)
	require.Equal(t, 1.0, res.Report.Test.Accuracy)
	require.Equal(t, [][]int{{4}}, res.Report.Test.Confusion)
}

func TestBenchmark_InputErrors(t *testing.T) {
	vectors := clusterVectors(16, map[string][]float64{"lake": {0, 0}, "rock": {50, 50}})

	t.Run("no vectors", func(t *testing.T) {
		_, err := train.Benchmark(context.Background(), nil, testFeatureNames, 0, knnSpec())
		require.ErrorIs(t, err, train.ErrNoData)
	})

	t.Run("bad spec", func(t *testing.T) {
		spec := knnSpec()
		spec.TestFraction = 0
		_, err := train.Benchmark(context.Background(), vectors, testFeatureNames, 0, spec)
		require.ErrorIs(t, err, train.ErrBadSpec)
	})

	t.Run("schema mismatch", func(t *testing.T) {
		bad := clusterVectors(16, map[string][]float64{"lake": {0, 0}, "rock": {50, 50}})
		bad[5].Values = domain.FeatureVector{1}
		_, err := train.Benchmark(context.Background(), bad, testFeatureNames, 0, knnSpec())
		require.ErrorIs(t, err, features.ErrSchemaMismatch)
	})

	t.Run("duplicate path", func(t *testing.T) {
		bad := clusterVectors(16, map[string][]float64{"lake": {0, 0}, "rock": {50, 50}})
		bad[1].Sample.Path = bad[0].Sample.Path
		_, err := train.Benchmark(context.Background(), bad, testFeatureNames, 0, knnSpec())
		require.ErrorIs(t, err, dataset.ErrDuplicateImage)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := train.Benchmark(ctx, vectors, testFeatureNames, 0, knnSpec())
		require.ErrorIs(t, err, context.Canceled)
	})
}
