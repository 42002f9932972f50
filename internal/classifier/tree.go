package classifier

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// treeNode is one node of a CART tree in array form. Feature -1 marks a
// leaf; interior nodes route rows with value <= Threshold to Left.
type treeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      int       `json:"left,omitempty"`
	Right     int       `json:"right,omitempty"`
	Counts    []float64 `json:"counts,omitempty"`
}

// decisionTree is a CART classification tree grown with the Gini
// criterion.
type decisionTree struct {
	Nodes []treeNode `json:"nodes"`
}

// growConfig bounds tree growth.
type growConfig struct {
	maxDepth int // 0 means unlimited
	minLeaf  int
	mtry     int // number of features considered per split
	classes  int
}

// grow recursively builds the subtree over the rows in idx and returns its
// root node index. idx may contain repeats (bootstrap samples).
func (t *decisionTree) grow(x *mat.Dense, y, idx []int, depth int, cfg growConfig, rng *rand.Rand) int {
	counts := classCounts(y, idx, cfg.classes)

	leaf := func() int {
		t.Nodes = append(t.Nodes, treeNode{Feature: -1, Counts: counts})

		return len(t.Nodes) - 1
	}

	if isPure(counts) || len(idx) < 2*cfg.minLeaf {
		return leaf()
	}
	if cfg.maxDepth > 0 && depth >= cfg.maxDepth {
		return leaf()
	}

	feature, threshold, ok := bestSplit(x, y, idx, cfg, rng)
	if !ok {
		return leaf()
	}

	var left, right []int
	for _, i := range idx {
		if x.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	// reserve the interior node before recursing so child indices land
	// after it
	node := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Feature: feature, Threshold: threshold})
	l := t.grow(x, y, left, depth+1, cfg, rng)
	r := t.grow(x, y, right, depth+1, cfg, rng)
	t.Nodes[node].Left = l
	t.Nodes[node].Right = r

	return node
}

// bestSplit finds the (feature, threshold) pair minimizing the weighted
// Gini impurity of the two children, considering a random subset of mtry
// features. ok is false when no feature admits a valid split.
func bestSplit(x *mat.Dense, y, idx []int, cfg growConfig, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	_, d := x.Dims()

	var candidates []int
	if cfg.mtry >= d {
		candidates = make([]int, d)
		for j := range candidates {
			candidates[j] = j
		}
	} else {
		candidates = rng.Perm(d)[:cfg.mtry]
	}

	order := make([]int, len(idx))
	left := make([]float64, cfg.classes)
	right := make([]float64, cfg.classes)

	bestScore := math.Inf(1)
	for _, f := range candidates {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return x.At(order[a], f) < x.At(order[b], f)
		})

		for c := range left {
			left[c] = 0
		}
		total := classCounts(y, idx, cfg.classes)
		copy(right, total)

		n := len(order)
		for i := 0; i < n-1; i++ {
			c := y[order[i]]
			left[c]++
			right[c]--

			v, next := x.At(order[i], f), x.At(order[i+1], f)
			if v == next {
				continue
			}

			nl, nr := i+1, n-i-1
			if nl < cfg.minLeaf || nr < cfg.minLeaf {
				continue
			}

			score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if score < bestScore {
				bestScore = score
				feature = f
				threshold = (v + next) / 2
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

// predictCounts walks the tree for one row and returns the class counts of
// the reached leaf.
func (t *decisionTree) predictCounts(row []float64) []float64 {
	i := 0
	for t.Nodes[i].Feature >= 0 {
		if row[t.Nodes[i].Feature] <= t.Nodes[i].Threshold {
			i = t.Nodes[i].Left
		} else {
			i = t.Nodes[i].Right
		}
	}

	return t.Nodes[i].Counts
}

// classCounts tallies the labels of the rows in idx.
func classCounts(y, idx []int, classes int) []float64 {
	counts := make([]float64, classes)
	for _, i := range idx {
		counts[y[i]]++
	}

	return counts
}

// isPure reports whether at most one class has samples.
func isPure(counts []float64) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}

	return nonzero <= 1
}

// gini computes the Gini impurity of a class count vector with n samples.
func gini(counts []float64, n int) float64 {
	impurity := 1.0
	for _, c := range counts {
		p := c / float64(n)
		impurity -= p * p
	}

	return impurity
}
