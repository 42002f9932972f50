// Package visualize renders dataset charts to image files using gonum/plot.
// The output format follows the file extension of the target path; callers
// pass .png paths.
package visualize

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	// ErrNoValues is returned when a chart is requested for empty data.
	ErrNoValues = errors.New("visualize: no values to plot")
	// ErrLengthMismatch is returned when scatter inputs differ in length.
	ErrLengthMismatch = errors.New("visualize: x and y lengths differ")
)

const (
	chartWidth  = 6 * vg.Inch
	chartHeight = 4 * vg.Inch
)

// ClassDistribution renders a bar chart of per-class sample counts, one bar
// per label in lexicographic order.
func ClassDistribution(counts map[string]int, path string) error {
	if len(counts) == 0 {
		return ErrNoValues
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	values := make(plotter.Values, len(labels))
	for i, label := range labels {
		values[i] = float64(counts[label])
	}

	p := plot.New()
	p.Title.Text = "Class distribution"
	p.Y.Label.Text = "images"

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return fmt.Errorf("could not build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("could not save chart: %w", err)
	}

	return nil
}

// Histogram renders the value distribution of one table column.
func Histogram(values []float64, column, path string) error {
	if len(values) == 0 {
		return ErrNoValues
	}

	p := plot.New()
	p.Title.Text = column
	p.X.Label.Text = column
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(values), 16)
	if err != nil {
		return fmt.Errorf("could not build histogram: %w", err)
	}
	p.Add(h)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("could not save chart: %w", err)
	}

	return nil
}

// Scatter renders paired column values as points.
func Scatter(xs, ys []float64, xName, yName, path string) error {
	if len(xs) != len(ys) {
		return ErrLengthMismatch
	}
	if len(xs) == 0 {
		return ErrNoValues
	}

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", yName, xName)
	p.X.Label.Text = xName
	p.Y.Label.Text = yName
	p.Add(plotter.NewGrid())

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("could not build scatter: %w", err)
	}
	s.GlyphStyle.Radius = vg.Points(2)
	p.Add(s)

	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("could not save chart: %w", err)
	}

	return nil
}
