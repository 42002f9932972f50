// Package asciichart renders small plain-text charts for terminal output:
// proportional horizontal bars for class distributions and histograms, and
// the classic star triangle.
package asciichart

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrLengthMismatch is returned when labels and values differ in length.
var ErrLengthMismatch = errors.New("asciichart: labels and values length mismatch")

// DefaultWidth is the bar width used when Bars is called with width <= 0.
const DefaultWidth = 40

// Triangle renders n rows of stars where row i holds exactly i stars.
// Every row, including the last, ends with a newline. For n <= 0 the
// result is the empty string.
func Triangle(n int) string {
	if n <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(n*(n+1)/2 + n)
	for i := 1; i <= n; i++ {
		for j := 0; j < i; j++ {
			b.WriteByte('*')
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// Bars renders one star bar per label, scaled so the largest value spans
// width characters. Negative values render as empty bars. Labels are
// left-aligned in a common column; each line ends with a newline.
func Bars(labels []string, values []float64, width int) (string, error) {
	if len(labels) != len(values) {
		return "", ErrLengthMismatch
	}
	if width <= 0 {
		width = DefaultWidth
	}

	labelWidth := 0
	for _, l := range labels {
		if len(l) > labelWidth {
			labelWidth = len(l)
		}
	}

	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}

	var b strings.Builder
	for i, l := range labels {
		bar := 0
		if max > 0 && values[i] > 0 {
			bar = int(math.Round(values[i] / max * float64(width)))
			if bar > width {
				bar = width
			}
		}

		b.WriteString(l)
		b.WriteString(strings.Repeat(" ", labelWidth-len(l)))
		b.WriteString("  ")
		b.WriteString(strings.Repeat("*", bar))
		b.WriteString(strings.Repeat(" ", width-bar))
		b.WriteString("  ")
		b.WriteString(strconv.FormatFloat(values[i], 'f', -1, 64))
		b.WriteByte('\n')
	}

	return b.String(), nil
}
