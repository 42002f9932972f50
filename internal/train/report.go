package train

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"imgclass/pkg/asciichart"
	"imgclass/pkg/domain"
)

const classChartWidth = 30

// WriteReport renders a benchmark report as plain text for the terminal.
func WriteReport(w io.Writer, r domain.Report) error {
	var b strings.Builder

	writeDataset(&b, r.Dataset)
	writeCandidates(&b, fmt.Sprintf("Leaderboard (top %d by cross-validation accuracy)", len(r.Leaderboard)), r.Leaderboard)
	writeCandidates(&b, "Best per family", r.BestPerFamily)

	fmt.Fprintf(&b, "Winner: %s (%s), cv accuracy %.4f\n\n", r.Winner.Family, paramsString(r.Winner.Params), r.Winner.CVAccuracy)

	writeTest(&b, r.Test)
	writeConfusion(&b, r.Test)

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}

	return nil
}

func writeDataset(b *strings.Builder, d domain.DatasetSummary) {
	fmt.Fprintf(b, "Dataset: %d images, %d classes, %d features", d.Images, len(d.Classes), d.Features)
	if d.Skipped > 0 {
		fmt.Fprintf(b, " (%d skipped)", d.Skipped)
	}
	b.WriteString("\n\n")

	values := make([]float64, len(d.Classes))
	for i, class := range d.Classes {
		values[i] = float64(d.PerClass[class])
	}

	chart, err := asciichart.Bars(d.Classes, values, classChartWidth)
	if err == nil {
		b.WriteString(chart)
	}
	b.WriteString("\n")
}

func writeCandidates(b *strings.Builder, title string, candidates []domain.Candidate) {
	b.WriteString(title + "\n")

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  #\tFAMILY\tPARAMS\tCV ACCURACY\tFOLDS\n")
	for i, c := range candidates {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%.4f\t%s\n", i+1, c.Family, paramsString(c.Params), c.CVAccuracy, foldsString(c.FoldAccuracies))
	}
	_ = tw.Flush()

	b.WriteString("\n")
}

func writeTest(b *strings.Builder, t domain.TestMetrics) {
	fmt.Fprintf(b, "Held-out test: accuracy %.4f\n", t.Accuracy)

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  CLASS\tPRECISION\tRECALL\tF1\tSUPPORT\n")
	for _, c := range t.PerClass {
		fmt.Fprintf(tw, "  %s\t%.4f\t%.4f\t%.4f\t%d\n", c.Class, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(tw, "  macro\t%.4f\t%.4f\t%.4f\t\n", t.MacroPrecision, t.MacroRecall, t.MacroF1)
	_ = tw.Flush()

	b.WriteString("\n")
}

func writeConfusion(b *strings.Builder, t domain.TestMetrics) {
	b.WriteString("Confusion matrix (rows true, columns predicted)\n")

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  \t%s\n", strings.Join(t.Labels, "\t"))
	for i, label := range t.Labels {
		fmt.Fprintf(tw, "  %s", label)
		for j := range t.Labels {
			fmt.Fprintf(tw, "\t%d", t.Confusion[i][j])
		}
		fmt.Fprintf(tw, "\n")
	}
	_ = tw.Flush()
}

func foldsString(folds []float64) string {
	parts := make([]string, len(folds))
	for i, f := range folds {
		parts[i] = fmt.Sprintf("%.2f", f)
	}

	return strings.Join(parts, "/")
}
