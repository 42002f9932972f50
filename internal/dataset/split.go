package dataset

import (
	"errors"
	"fmt"
	"imgclass/pkg/domain"
	"math"
	"math/rand"
	"sort"
)

var (
	// ErrTestFraction is returned when the requested test fraction is not in (0, 1).
	ErrTestFraction = errors.New("dataset: test fraction must be in (0, 1)")

	// ErrFoldCount is returned when the requested number of folds is invalid.
	ErrFoldCount = errors.New("dataset: fold count must be at least 2 and at most the sample count")
)

// byLabel groups sample indices by label, with labels iterated in sorted
// order so results do not depend on map iteration.
func byLabel(labels []string) ([]string, map[string][]int) {
	groups := map[string][]int{}
	for i, l := range labels {
		groups[l] = append(groups[l], i)
	}
	names := make([]string, 0, len(groups))
	for l := range groups {
		names = append(names, l)
	}
	sort.Strings(names)

	return names, groups
}

// StratifiedSplit partitions samples into train and test sets so both parts
// keep the label proportions of the full set. The same seed always yields
// the same partition.
func StratifiedSplit(samples []domain.Sample, testFraction float64, seed int64) (train, test []domain.Sample, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, ErrTestFraction
	}

	labels := make([]string, len(samples))
	for i, s := range samples {
		labels[i] = s.Label
	}

	rng := rand.New(rand.NewSource(seed)) //nolint: gosec
	names, groups := byLabel(labels)
	for _, name := range names {
		idx := groups[name]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(math.Round(float64(len(idx)) * testFraction))
		if nTest == len(idx) && len(idx) > 1 {
			// keep at least one sample of every class in the training set
			nTest--
		}
		for k, i := range idx {
			if k < nTest {
				test = append(test, samples[i])
			} else {
				train = append(train, samples[i])
			}
		}
	}

	return train, test, nil
}

// StratifiedKFold assigns sample indices to k folds, dealing each label
// group round-robin so every fold keeps roughly the full label proportions.
// The returned slice holds the test indices of each fold; together the folds
// cover every index exactly once.
func StratifiedKFold(labels []string, k int, seed int64) ([][]int, error) {
	if k < 2 || k > len(labels) {
		return nil, fmt.Errorf("%w: k=%d with %d samples", ErrFoldCount, k, len(labels))
	}

	folds := make([][]int, k)
	rng := rand.New(rand.NewSource(seed)) //nolint: gosec

	names, groups := byLabel(labels)
	next := 0
	for _, name := range names {
		idx := groups[name]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for _, i := range idx {
			folds[next%k] = append(folds[next%k], i)
			next++
		}
	}

	for _, fold := range folds {
		sort.Ints(fold)
	}

	return folds, nil
}

// TrainIndices returns all indices not present in the given test fold.
func TrainIndices(total int, testFold []int) []int {
	inTest := make(map[int]bool, len(testFold))
	for _, i := range testFold {
		inTest[i] = true
	}

	out := make([]int, 0, total-len(testFold))
	for i := 0; i < total; i++ {
		if !inTest[i] {
			out = append(out, i)
		}
	}

	return out
}
