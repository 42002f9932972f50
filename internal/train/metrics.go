package train

import "imgclass/pkg/domain"

// computeMetrics evaluates predictions against true labels: accuracy, the
// confusion matrix over the full label set, per-class precision, recall
// and F1, and their unweighted macro averages.
func computeMetrics(labels []string, yTrue, yPred []int) domain.TestMetrics {
	n := len(labels)

	confusion := make([][]int, n)
	for i := range confusion {
		confusion[i] = make([]int, n)
	}

	correct := 0
	for i := range yTrue {
		confusion[yTrue[i]][yPred[i]]++
		if yTrue[i] == yPred[i] {
			correct++
		}
	}

	accuracy := 0.0
	if len(yTrue) > 0 {
		accuracy = float64(correct) / float64(len(yTrue))
	}

	perClass := make([]domain.ClassMetrics, n)
	var macroP, macroR, macroF float64
	for c := 0; c < n; c++ {
		tp := confusion[c][c]
		support, predicted := 0, 0
		for j := 0; j < n; j++ {
			support += confusion[c][j]
			predicted += confusion[j][c]
		}

		precision, recall, f1 := 0.0, 0.0, 0.0
		if predicted > 0 {
			precision = float64(tp) / float64(predicted)
		}
		if support > 0 {
			recall = float64(tp) / float64(support)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		perClass[c] = domain.ClassMetrics{
			Class:     labels[c],
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support,
		}
		macroP += precision
		macroR += recall
		macroF += f1
	}

	if n > 0 {
		macroP /= float64(n)
		macroR /= float64(n)
		macroF /= float64(n)
	}

	return domain.TestMetrics{
		Accuracy:       accuracy,
		PerClass:       perClass,
		MacroPrecision: macroP,
		MacroRecall:    macroR,
		MacroF1:        macroF,
		Labels:         labels,
		Confusion:      confusion,
	}
}
