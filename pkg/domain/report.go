package domain

// DatasetSummary describes the dataset a benchmark ran on: how many images
// were usable, how many had to be skipped, and how the labels distribute.
type DatasetSummary struct {
	// Images is the number of samples that produced a feature vector.
	Images int `json:"images"`
	// Skipped is the number of manifest rows whose image failed to load or
	// decode and was therefore left out.
	Skipped int `json:"skipped"`
	// Classes is the sorted list of distinct labels.
	Classes []string `json:"classes"`
	// PerClass maps each label to its sample count.
	PerClass map[string]int `json:"perClass"`
	// Features is the length of every feature vector.
	Features int `json:"features"`
}

// Candidate is one evaluated point of the hyperparameter grid: a classifier
// family with concrete parameters and its cross-validation score.
type Candidate struct {
	// Family is the classifier family name: "knn", "forest" or "svm".
	Family string `json:"family"`
	// Params holds the concrete hyperparameters, rendered as strings for
	// stable display and hashing (e.g. "k": "5", "weights": "distance").
	Params map[string]string `json:"params"`
	// CVAccuracy is the mean accuracy across the cross-validation folds.
	CVAccuracy float64 `json:"cvAccuracy"`
	// FoldAccuracies lists the per-fold accuracies behind CVAccuracy.
	FoldAccuracies []float64 `json:"foldAccuracies"`
}

// ClassMetrics carries the per-class evaluation numbers of the final test.
type ClassMetrics struct {
	// Class is the label these metrics describe.
	Class string `json:"class"`
	// Precision is tp / (tp + fp); 0 when the class was never predicted.
	Precision float64 `json:"precision"`
	// Recall is tp / (tp + fn); 0 when the class has no test samples.
	Recall float64 `json:"recall"`
	// F1 is the harmonic mean of precision and recall.
	F1 float64 `json:"f1"`
	// Support is the number of test samples with this true label.
	Support int `json:"support"`
}

// TestMetrics is the held-out evaluation of the winning model.
type TestMetrics struct {
	// Accuracy is the fraction of correctly classified test samples.
	Accuracy float64 `json:"accuracy"`
	// PerClass lists metrics per label, ordered like Labels.
	PerClass []ClassMetrics `json:"perClass"`
	// MacroPrecision, MacroRecall and MacroF1 are unweighted means over classes.
	MacroPrecision float64 `json:"macroPrecision"`
	MacroRecall    float64 `json:"macroRecall"`
	MacroF1        float64 `json:"macroF1"`
	// Labels fixes the row/column order of Confusion.
	Labels []string `json:"labels"`
	// Confusion is the confusion matrix: Confusion[i][j] counts test samples
	// with true label Labels[i] predicted as Labels[j].
	Confusion [][]int `json:"confusion"`
}

// Report is the complete outcome of one benchmark run: the dataset summary,
// the grid-search leaderboard, the per-family winners, the overall winner and
// its held-out test metrics.
type Report struct {
	Dataset DatasetSummary `json:"dataset"`
	// Leaderboard holds the TopK candidates across all families, best first.
	Leaderboard []Candidate `json:"leaderboard"`
	// BestPerFamily holds the best candidate of each family, ordered by
	// family name.
	BestPerFamily []Candidate `json:"bestPerFamily"`
	// Winner is the overall best candidate; the model artifact is its refit.
	Winner Candidate `json:"winner"`
	// Test is the held-out evaluation of Winner.
	Test TestMetrics `json:"test"`
}

// Prediction is the outcome of classifying a single image: the winning class,
// its confidence, and the score of every known class.
type Prediction struct {
	// Class is the predicted label.
	Class string `json:"class"`
	// Confidence is the score of the predicted label, in [0, 1].
	Confidence float64 `json:"confidence"`
	// Scores maps every label to its normalized score.
	Scores map[string]float64 `json:"scores"`
}
