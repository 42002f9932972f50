package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrNoNumericColumns is returned when a CSV file holds no column whose
// values all parse as numbers.
var ErrNoNumericColumns = errors.New("dataset: no numeric columns found")

// Table holds the numeric columns of a CSV file. Non-numeric columns are
// dropped on load; empty cells become NaN and are skipped by Describe.
type Table struct {
	// Columns are the names of the retained numeric columns, in file order.
	Columns []string
	// Data has one row per CSV row and one column per entry in Columns.
	Data *mat.Dense
}

// ColumnSummary holds descriptive statistics for one numeric column.
type ColumnSummary struct {
	Name  string
	Count int
	Mean  float64
	Std   float64
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// LoadTable reads a CSV file with a header row and returns its numeric
// columns. A column is numeric when every non-empty cell parses as a float.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open table: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read table: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset: table %s has no data rows", path)
	}

	header := records[0]
	rows := records[1:]

	// decide per column whether all non-empty cells parse as floats
	numeric := make([]bool, len(header))
	for c := range header {
		numeric[c] = true
		nonEmpty := 0
		for _, row := range rows {
			cell := row[c]
			if cell == "" {
				continue
			}
			nonEmpty++
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric[c] = false

				break
			}
		}
		if nonEmpty == 0 {
			numeric[c] = false
		}
	}

	var cols []string
	var keep []int
	for c, name := range header {
		if numeric[c] {
			cols = append(cols, name)
			keep = append(keep, c)
		}
	}
	if len(cols) == 0 {
		return nil, ErrNoNumericColumns
	}

	data := mat.NewDense(len(rows), len(cols), nil)
	for i, row := range rows {
		for j, c := range keep {
			if row[c] == "" {
				data.Set(i, j, math.NaN())

				continue
			}
			v, _ := strconv.ParseFloat(row[c], 64)
			data.Set(i, j, v)
		}
	}

	return &Table{Columns: cols, Data: data}, nil
}

// Rows returns the number of data rows in the table.
func (t *Table) Rows() int {
	r, _ := t.Data.Dims()

	return r
}

// Column returns the values of the named column, excluding NaN cells.
func (t *Table) Column(name string) ([]float64, bool) {
	for j, col := range t.Columns {
		if col != name {
			continue
		}

		rows, _ := t.Data.Dims()
		out := make([]float64, 0, rows)
		for i := 0; i < rows; i++ {
			if v := t.Data.At(i, j); !math.IsNaN(v) {
				out = append(out, v)
			}
		}

		return out, true
	}

	return nil, false
}

// PairedColumns returns the values of two named columns restricted to rows
// where both cells are present, keeping the pairs aligned. The second return
// is false when either column does not exist.
func (t *Table) PairedColumns(xName, yName string) ([]float64, []float64, bool) {
	xi, yi := -1, -1
	for j, col := range t.Columns {
		if col == xName {
			xi = j
		}
		if col == yName {
			yi = j
		}
	}
	if xi < 0 || yi < 0 {
		return nil, nil, false
	}

	rows, _ := t.Data.Dims()
	xs := make([]float64, 0, rows)
	ys := make([]float64, 0, rows)
	for i := 0; i < rows; i++ {
		x, y := t.Data.At(i, xi), t.Data.At(i, yi)
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}

	return xs, ys, true
}

// Correlation returns the Pearson correlation matrix of the columns.
// Rows containing a NaN cell are left out so every pairwise coefficient
// uses the same observations.
func (t *Table) Correlation() *mat.SymDense {
	rows, cols := t.Data.Dims()

	var kept []int
	for i := 0; i < rows; i++ {
		complete := true
		for j := 0; j < cols; j++ {
			if math.IsNaN(t.Data.At(i, j)) {
				complete = false

				break
			}
		}
		if complete {
			kept = append(kept, i)
		}
	}

	full := mat.NewDense(len(kept), cols, nil)
	for i, r := range kept {
		full.SetRow(i, t.Data.RawRowView(r))
	}

	corr := mat.NewSymDense(cols, nil)
	stat.CorrelationMatrix(corr, full, nil)

	return corr
}

// Describe computes count, mean, standard deviation, extrema and quartiles
// for every column, mirroring the usual dataframe summary. Quartiles follow
// the empirical CDF: the smallest value whose cumulative fraction reaches
// the requested probability.
func (t *Table) Describe() []ColumnSummary {
	out := make([]ColumnSummary, 0, len(t.Columns))
	for _, name := range t.Columns {
		vals, _ := t.Column(name)
		s := ColumnSummary{Name: name, Count: len(vals)}
		if len(vals) > 0 {
			sort.Float64s(vals)
			s.Mean = stat.Mean(vals, nil)
			s.Std = stat.StdDev(vals, nil)
			if len(vals) == 1 {
				s.Std = 0
			}
			s.Min = floats.Min(vals)
			s.Max = floats.Max(vals)
			s.P25 = stat.Quantile(0.25, stat.Empirical, vals, nil)
			s.P50 = stat.Quantile(0.5, stat.Empirical, vals, nil)
			s.P75 = stat.Quantile(0.75, stat.Empirical, vals, nil)
		}
		out = append(out, s)
	}

	return out
}
