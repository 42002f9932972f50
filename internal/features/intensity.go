package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// intensityCount is the number of grayscale intensity features.
const intensityCount = 10

// intensityFeatures computes global statistics of the gray plane: mean,
// standard deviation, skewness, excess kurtosis, 256-bin entropy, extrema
// and the 10th, 50th and 90th percentiles.
func intensityFeatures(p *Plane) []float64 {
	gray := p.GrayValues()

	mean, std := stat.MeanStdDev(gray, nil)

	skew := 0.0
	kurt := 0.0
	if std > 0 {
		skew = stat.Skew(gray, nil)
		kurt = stat.ExKurtosis(gray, nil)
	}

	const bins = 256
	hist := make([]float64, bins)
	for _, v := range gray {
		b := int(v * bins)
		if b >= bins {
			b = bins - 1
		}
		hist[b]++
	}
	entropy := 0.0
	n := float64(len(gray))
	for _, c := range hist {
		if c == 0 {
			continue
		}
		pb := c / n
		entropy -= pb * math.Log2(pb)
	}

	sorted := append([]float64(nil), gray...)
	sort.Float64s(sorted)

	return []float64{
		mean,
		std,
		skew,
		kurt,
		entropy,
		floats.Min(sorted),
		floats.Max(sorted),
		stat.Quantile(0.1, stat.Empirical, sorted, nil),
		stat.Quantile(0.5, stat.Empirical, sorted, nil),
		stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
}

// intensityNames returns the feature names in the order intensityFeatures
// emits them.
func intensityNames() []string {
	return []string{
		"int_mean", "int_std", "int_skew", "int_kurtosis", "int_entropy",
		"int_min", "int_max", "int_p10", "int_p50", "int_p90",
	}
}
