package train

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"imgclass/internal/classifier"
	"imgclass/pkg/domain"
)

// gridCandidate is one point of the hyperparameter grid: the estimator
// builder plus the display form of its parameters.
type gridCandidate struct {
	family string
	params map[string]string
	build  func() classifier.Estimator
}

// expandGrid enumerates every hyperparameter combination of every family.
// Families come in alphabetical order and combinations in declared grid
// order; the position in the returned slice is the tie-break order of the
// search.
func expandGrid(spec domain.TrainSpec) []gridCandidate {
	var out []gridCandidate

	for _, trees := range spec.Forest.Trees {
		for _, depth := range spec.Forest.MaxDepth {
			for _, minLeaf := range spec.Forest.MinLeaf {
				cfg := classifier.ForestConfig{Trees: trees, MaxDepth: depth, MinLeaf: minLeaf, Seed: spec.Seed}
				out = append(out, gridCandidate{
					family: classifier.FamilyForest,
					params: map[string]string{
						"trees":    strconv.Itoa(cfg.Trees),
						"maxDepth": strconv.Itoa(cfg.MaxDepth),
						"minLeaf":  strconv.Itoa(cfg.MinLeaf),
					},
					build: func() classifier.Estimator { return classifier.NewForest(cfg) },
				})
			}
		}
	}

	for _, k := range spec.KNN.K {
		for _, weights := range spec.KNN.Weights {
			cfg := classifier.KNNConfig{K: k, Weights: weights}
			out = append(out, gridCandidate{
				family: classifier.FamilyKNN,
				params: map[string]string{
					"k":       strconv.Itoa(cfg.K),
					"weights": cfg.Weights,
				},
				build: func() classifier.Estimator { return classifier.NewKNN(cfg) },
			})
		}
	}

	for _, lambda := range spec.SVM.Lambda {
		for _, epochs := range spec.SVM.Epochs {
			cfg := classifier.SVMConfig{Lambda: lambda, Epochs: epochs, Seed: spec.Seed}
			out = append(out, gridCandidate{
				family: classifier.FamilySVM,
				params: map[string]string{
					"lambda": strconv.FormatFloat(cfg.Lambda, 'g', -1, 64),
					"epochs": strconv.Itoa(cfg.Epochs),
				},
				build: func() classifier.Estimator { return classifier.NewSVM(cfg) },
			})
		}
	}

	return out
}

// paramsString renders a parameter map as "key=value" pairs in sorted key
// order, for logs and the printed report.
func paramsString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, params[k])
	}

	return strings.Join(parts, " ")
}
