package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"imgclass/internal/dataset"
	"imgclass/pkg/asciichart"
	"imgclass/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	histBins  = 8
	histWidth = 40
)

// statsCommand constructs the 'stats' subcommand that prints descriptive
// statistics for the numeric columns of a CSV file: a summary table, a
// per-column distribution chart and the correlation matrix.
func statsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <table.csv>",
		Short: "Prints descriptive statistics of a numeric CSV table",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			table, err := dataset.LoadTable(args[0])
			if err != nil {
				logger.Fatal(ctx, "could not load table", zap.Error(err))
			}

			fmt.Printf("%s: %d rows, %d numeric columns\n\n", args[0], table.Rows(), len(table.Columns)) //nolint: forbidigo

			if err := writeSummaries(os.Stdout, table.Describe()); err != nil {
				logger.Fatal(ctx, "could not print summary", zap.Error(err))
			}
			if err := writeHistograms(os.Stdout, table); err != nil {
				logger.Fatal(ctx, "could not print distributions", zap.Error(err))
			}
			if err := writeCorrelation(os.Stdout, table); err != nil {
				logger.Fatal(ctx, "could not print correlation matrix", zap.Error(err))
			}
		},
	}

	return cmd
}

func writeSummaries(w io.Writer, summaries []dataset.ColumnSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n",
			s.Name, s.Count, s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("could not flush summary table: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	return nil
}

func writeHistograms(w io.Writer, table *dataset.Table) error {
	for _, name := range table.Columns {
		vals, _ := table.Column(name)
		if len(vals) == 0 {
			continue
		}

		labels, counts := histogram(vals, histBins)
		chart, err := asciichart.Bars(labels, counts, histWidth)
		if err != nil {
			return fmt.Errorf("could not chart column %s: %w", name, err)
		}
		_, _ = fmt.Fprintf(w, "%s\n%s\n", name, chart)
	}

	return nil
}

// histogram buckets vals into equal-width bins between the observed extrema.
func histogram(vals []float64, bins int) ([]string, []float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return []string{fmt.Sprintf("%.3g", lo)}, []float64{float64(len(vals))}
	}

	width := (hi - lo) / float64(bins)
	counts := make([]float64, bins)
	for _, v := range vals {
		b := int((v - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		counts[b]++
	}

	labels := make([]string, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.3g..%.3g", lo+float64(i)*width, lo+float64(i+1)*width)
	}

	return labels, counts
}

func writeCorrelation(w io.Writer, table *dataset.Table) error {
	corr := table.Correlation()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "corr")
	for _, name := range table.Columns {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprintln(tw)
	for i, name := range table.Columns {
		fmt.Fprint(tw, name)
		for j := range table.Columns {
			fmt.Fprintf(tw, "\t%.3f", corr.At(i, j))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("could not flush correlation matrix: %w", err)
	}

	return nil
}
