package asciichart_test

import (
	"imgclass/pkg/asciichart"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTriangle(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want string
	}{
		{
			name: "five rows",
			n:    5,
			want: "*\n**\n***\n****\n*****\n",
		},
		{
			name: "one row",
			n:    1,
			want: "*\n",
		},
		{
			name: "zero rows",
			n:    0,
			want: "",
		},
		{
			name: "negative rows",
			n:    -3,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, asciichart.Triangle(tt.n))
		})
	}
}

func TestTriangleRowShape(t *testing.T) {
	out := asciichart.Triangle(8)
	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, rows, 8)
	for i, row := range rows {
		require.Equal(t, strings.Repeat("*", i+1), row, "row %d", i+1)
	}
}

func TestBars(t *testing.T) {
	out, err := asciichart.Bars([]string{"cat", "dog"}, []float64{4, 2}, 4)
	require.NoError(t, err)
	require.Equal(t, "cat  ****  4\ndog  **    2\n", out)
}

func TestBarsScalesToLargestValue(t *testing.T) {
	out, err := asciichart.Bars([]string{"a", "b", "c"}, []float64{10, 5, 0}, 10)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, 10, strings.Count(lines[0], "*"), "largest value spans full width")
	require.Equal(t, 5, strings.Count(lines[1], "*"))
	require.Equal(t, 0, strings.Count(lines[2], "*"))
}

func TestBarsEdgeCases(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		_, err := asciichart.Bars([]string{"a"}, []float64{1, 2}, 10)
		require.ErrorIs(t, err, asciichart.ErrLengthMismatch)
	})

	t.Run("all zero values", func(t *testing.T) {
		out, err := asciichart.Bars([]string{"a", "b"}, []float64{0, 0}, 5)
		require.NoError(t, err)
		require.NotContains(t, out, "*")
	})

	t.Run("negative values render empty", func(t *testing.T) {
		out, err := asciichart.Bars([]string{"a", "b"}, []float64{-1, 3}, 6)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		require.Equal(t, 0, strings.Count(lines[0], "*"))
		require.Equal(t, 6, strings.Count(lines[1], "*"))
	})

	t.Run("default width", func(t *testing.T) {
		out, err := asciichart.Bars([]string{"x"}, []float64{1}, 0)
		require.NoError(t, err)
		require.Equal(t, asciichart.DefaultWidth, strings.Count(out, "*"))
	})

	t.Run("empty input", func(t *testing.T) {
		out, err := asciichart.Bars(nil, nil, 10)
		require.NoError(t, err)
		require.Equal(t, "", out)
	})
}
