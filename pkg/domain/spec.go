package domain

// TrainSpec declares everything a benchmark run needs beyond the server-side
// dataset: the split and cross-validation parameters and the hyperparameter
// grid of each classifier family. Two specs with the same canonical form are
// considered the same run and share results (see the runs service).
type TrainSpec struct {
	// TestFraction is the share of the dataset held out for the final
	// evaluation, strictly between 0 and 1.
	TestFraction float64 `json:"testFraction"`
	// Folds is the number of stratified cross-validation folds (>= 2).
	Folds int `json:"folds"`
	// Seed drives every random decision of the run: the split, the fold
	// assignment, forest bootstraps and SGD shuffles. Identical spec and
	// dataset therefore reproduce an identical report.
	Seed int64 `json:"seed"`
	// TopK is the leaderboard size kept in the report.
	TopK int `json:"topK"`

	// KNN is the k-nearest-neighbors grid.
	KNN KNNGrid `json:"knn"`
	// Forest is the random-forest grid.
	Forest ForestGrid `json:"forest"`
	// SVM is the linear-SVM grid.
	SVM SVMGrid `json:"svm"`
}

// KNNGrid enumerates the hyperparameter values searched for the
// k-nearest-neighbors family.
type KNNGrid struct {
	// K lists the neighbor counts to try.
	K []int `json:"k"`
	// Weights lists the vote weighting schemes to try: "uniform" or "distance".
	Weights []string `json:"weights"`
}

// ForestGrid enumerates the hyperparameter values searched for the
// random-forest family.
type ForestGrid struct {
	// Trees lists the ensemble sizes to try.
	Trees []int `json:"trees"`
	// MaxDepth lists tree depth limits to try; 0 means unlimited.
	MaxDepth []int `json:"maxDepth"`
	// MinLeaf lists the minimum samples per leaf to try.
	MinLeaf []int `json:"minLeaf"`
}

// SVMGrid enumerates the hyperparameter values searched for the linear-SVM
// family.
type SVMGrid struct {
	// Lambda lists the regularization strengths to try.
	Lambda []float64 `json:"lambda"`
	// Epochs lists the SGD epoch counts to try.
	Epochs []int `json:"epochs"`
}
