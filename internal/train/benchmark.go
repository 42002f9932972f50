// Package train runs the classifier benchmark: it splits a labeled
// feature dataset, grid-searches the three classifier families with
// stratified cross-validation, ranks the candidates, refits the winner and
// evaluates it once on the held-out split. The fitted winner is packaged
// as a model artifact for later prediction.
package train

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"imgclass/internal/classifier"
	"imgclass/internal/dataset"
	"imgclass/internal/features"
	"imgclass/pkg/domain"
	"imgclass/pkg/logger"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoData is returned when a benchmark has no usable feature vectors.
	ErrNoData = errors.New("train: no usable samples")

	// ErrBadSpec is returned when a training spec has an out-of-range field.
	ErrBadSpec = errors.New("train: invalid training spec")

	// ErrEmptyGrid is returned when no family grid contributes a candidate.
	ErrEmptyGrid = errors.New("train: all family grids are empty")
)

// Result bundles a finished benchmark: the report and the fitted winner
// ready to be saved as a model artifact.
type Result struct {
	Report   domain.Report
	Artifact *Artifact
}

// Benchmark executes the full grid-search benchmark over extracted feature
// vectors. featureNames is the schema the vectors were extracted with;
// skipped is the number of manifest rows that produced no vector and is
// carried into the report's dataset summary. The spec's seed makes the
// whole run deterministic.
func Benchmark(ctx context.Context, vectors []domain.LabeledVector, featureNames []string, skipped int, spec domain.TrainSpec) (*Result, error) {
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, ErrNoData
	}

	byPath := make(map[string]*domain.LabeledVector, len(vectors))
	samples := make([]domain.Sample, len(vectors))
	for i := range vectors {
		if len(vectors[i].Values) != len(featureNames) {
			return nil, fmt.Errorf("%w: %s has %d values, want %d",
				features.ErrSchemaMismatch, vectors[i].Sample.Path, len(vectors[i].Values), len(featureNames))
		}
		if _, dup := byPath[vectors[i].Sample.Path]; dup {
			return nil, fmt.Errorf("%w: %s", dataset.ErrDuplicateImage, vectors[i].Sample.Path)
		}
		byPath[vectors[i].Sample.Path] = &vectors[i]
		samples[i] = vectors[i].Sample
	}

	labels, labelIndex := labelSet(vectors)

	trainSamples, testSamples, err := dataset.StratifiedSplit(samples, spec.TestFraction, spec.Seed)
	if err != nil {
		return nil, fmt.Errorf("splitting dataset: %w", err)
	}
	if len(trainSamples) == 0 || len(testSamples) == 0 {
		return nil, fmt.Errorf("%w: the split left one side empty", ErrNoData)
	}

	xTrain, yTrain := design(trainSamples, byPath, labelIndex, len(featureNames))
	xTest, yTest := design(testSamples, byPath, labelIndex, len(featureNames))

	trainLabels := make([]string, len(trainSamples))
	for i, s := range trainSamples {
		trainLabels[i] = s.Label
	}
	folds, err := dataset.StratifiedKFold(trainLabels, spec.Folds, spec.Seed)
	if err != nil {
		return nil, fmt.Errorf("assigning folds: %w", err)
	}

	logger.Info(ctx, "starting benchmark",
		zap.Int("samples", len(vectors)),
		zap.Int("train", len(trainSamples)),
		zap.Int("test", len(testSamples)),
		zap.Int("features", len(featureNames)),
		zap.Strings("classes", labels))

	candidates := expandGrid(spec)
	board := newLeaderboard(spec.TopK)
	builders := make(map[string]func() classifier.Estimator, len(candidates))
	bestByFamily := map[string]domain.Candidate{}

	for _, gc := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("benchmark canceled: %w", err)
		}

		foldAccs, err := crossValidate(xTrain, yTrain, folds, gc.build)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s %s: %w", gc.family, paramsString(gc.params), err)
		}

		cand := domain.Candidate{
			Family:         gc.family,
			Params:         gc.params,
			CVAccuracy:     stat.Mean(foldAccs, nil),
			FoldAccuracies: foldAccs,
		}
		if err := board.Add(cand); err != nil {
			return nil, fmt.Errorf("ranking %s %s: %w", gc.family, paramsString(gc.params), err)
		}
		builders[candidateKey(cand)] = gc.build

		if best, ok := bestByFamily[gc.family]; !ok || cand.CVAccuracy > best.CVAccuracy {
			bestByFamily[gc.family] = cand
		}

		logger.Debug(ctx, "evaluated candidate",
			zap.String("family", gc.family),
			zap.String("params", paramsString(gc.params)),
			zap.Float64("cvAccuracy", cand.CVAccuracy))
	}

	ranking := board.Candidates()
	winner := ranking[0]

	scaler := &classifier.StandardScaler{}
	xTrainScaled, err := scaler.FitTransform(xTrain)
	if err != nil {
		return nil, fmt.Errorf("scaling training data: %w", err)
	}
	est := builders[candidateKey(winner)]()
	if err := est.Fit(xTrainScaled, yTrain); err != nil {
		return nil, fmt.Errorf("refitting winner: %w", err)
	}

	xTestScaled, err := scaler.Transform(xTest)
	if err != nil {
		return nil, fmt.Errorf("scaling test data: %w", err)
	}
	yPred, err := est.Predict(xTestScaled)
	if err != nil {
		return nil, fmt.Errorf("evaluating winner: %w", err)
	}

	report := domain.Report{
		Dataset: domain.DatasetSummary{
			Images:   len(vectors),
			Skipped:  skipped,
			Classes:  labels,
			PerClass: dataset.ClassCounts(samples),
			Features: len(featureNames),
		},
		Leaderboard:   ranking,
		BestPerFamily: familyRanking(bestByFamily),
		Winner:        winner,
		Test:          computeMetrics(labels, yTest, yPred),
	}

	model, err := classifier.NewModel(est)
	if err != nil {
		return nil, fmt.Errorf("packaging winner: %w", err)
	}

	logger.Info(ctx, "benchmark finished",
		zap.String("winner", winner.Family),
		zap.String("params", paramsString(winner.Params)),
		zap.Float64("cvAccuracy", winner.CVAccuracy),
		zap.Float64("testAccuracy", report.Test.Accuracy))

	return &Result{
		Report: report,
		Artifact: &Artifact{
			SchemaVersion: artifactSchemaVersion,
			CreatedAt:     time.Now().UTC(),
			FeatureNames:  featureNames,
			Labels:        labels,
			Scaler:        *scaler,
			Model:         model,
			Report:        report,
		},
	}, nil
}

// crossValidate evaluates one estimator configuration over the folds and
// returns the per-fold accuracies. The scaler is refitted inside every
// fold so validation rows never leak into the scaling statistics.
func crossValidate(x *mat.Dense, y []int, folds [][]int, build func() classifier.Estimator) ([]float64, error) {
	total, _ := x.Dims()

	accs := make([]float64, len(folds))
	for f, valIdx := range folds {
		trainIdx := dataset.TrainIndices(total, valIdx)

		scaler := &classifier.StandardScaler{}
		xTrain, err := scaler.FitTransform(pickRows(x, trainIdx))
		if err != nil {
			return nil, err
		}
		xVal, err := scaler.Transform(pickRows(x, valIdx))
		if err != nil {
			return nil, err
		}

		est := build()
		if err := est.Fit(xTrain, pickLabels(y, trainIdx)); err != nil {
			return nil, err
		}
		pred, err := est.Predict(xVal)
		if err != nil {
			return nil, err
		}

		correct := 0
		for i, v := range valIdx {
			if pred[i] == y[v] {
				correct++
			}
		}
		accs[f] = float64(correct) / float64(len(valIdx))
	}

	return accs, nil
}

// labelSet returns the sorted distinct labels and their index assignment.
func labelSet(vectors []domain.LabeledVector) ([]string, map[string]int) {
	seen := map[string]bool{}
	var labels []string
	for i := range vectors {
		if l := vectors[i].Sample.Label; !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	return labels, index
}

// design assembles the matrix and label indices for a sample subset.
func design(samples []domain.Sample, byPath map[string]*domain.LabeledVector, labelIndex map[string]int, width int) (*mat.Dense, []int) {
	x := mat.NewDense(len(samples), width, nil)
	y := make([]int, len(samples))
	for i, s := range samples {
		x.SetRow(i, byPath[s.Path].Values)
		y[i] = labelIndex[s.Label]
	}

	return x, y
}

// pickRows copies the given rows into a new matrix.
func pickRows(x *mat.Dense, idx []int) *mat.Dense {
	_, cols := x.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, j := range idx {
		out.SetRow(i, x.RawRowView(j))
	}

	return out
}

// pickLabels copies the given label entries.
func pickLabels(y, idx []int) []int {
	out := make([]int, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}

	return out
}

// candidateKey identifies a grid candidate by family and rendered params.
func candidateKey(c domain.Candidate) string {
	return c.Family + " " + paramsString(c.Params)
}

// familyRanking orders the per-family winners by family name.
func familyRanking(best map[string]domain.Candidate) []domain.Candidate {
	families := make([]string, 0, len(best))
	for f := range best {
		families = append(families, f)
	}
	sort.Strings(families)

	out := make([]domain.Candidate, len(families))
	for i, f := range families {
		out[i] = best[f]
	}

	return out
}
