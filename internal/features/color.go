package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// HSV histogram geometry: 8 hue bins, 2 saturation bins, 2 value bins.
const (
	hueBins = 8
	satBins = 2
	valBins = 2
)

// colorCount is the number of color features: the joint HSV histogram plus
// mean, standard deviation and skewness for each RGB channel.
const colorCount = hueBins*satBins*valBins + 9

// rgbToHSV converts a single pixel. Hue is in [0, 360), saturation and
// value in [0, 1].
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	v = max

	delta := max - min
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}

	switch max {
	case r:
		h = math.Mod((g-b)/delta, 6)
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}

	return h, s, v
}

// colorFeatures computes the joint HSV histogram followed by per-channel
// RGB statistics. The histogram is normalized to sum to one.
func colorFeatures(p *Plane) []float64 {
	out := make([]float64, 0, colorCount)

	hist := make([]float64, hueBins*satBins*valBins)
	n := float64(len(p.R))
	for i := range p.R {
		h, s, v := rgbToHSV(p.R[i], p.G[i], p.B[i])

		hi := int(h / 360 * hueBins)
		if hi >= hueBins {
			hi = hueBins - 1
		}
		si := int(s * satBins)
		if si >= satBins {
			si = satBins - 1
		}
		vi := int(v * valBins)
		if vi >= valBins {
			vi = valBins - 1
		}

		hist[(hi*satBins+si)*valBins+vi]++
	}
	for i := range hist {
		hist[i] /= n
	}
	out = append(out, hist...)

	for _, channel := range [][]float64{p.R, p.G, p.B} {
		mean, std := stat.MeanStdDev(channel, nil)
		out = append(out, mean, std, safeSkew(channel, mean, std))
	}

	return out
}

// safeSkew returns the sample skewness, or zero for constant data where the
// estimator is undefined.
func safeSkew(vals []float64, mean, std float64) float64 {
	if std == 0 || len(vals) < 3 {
		return 0
	}

	return stat.Skew(vals, nil)
}

// colorNames returns the feature names in the order colorFeatures emits them.
func colorNames() []string {
	out := make([]string, 0, colorCount)
	for h := 0; h < hueBins; h++ {
		for s := 0; s < satBins; s++ {
			for v := 0; v < valBins; v++ {
				out = append(out, fmt.Sprintf("hsv_hist_h%d_s%d_v%d", h, s, v))
			}
		}
	}
	for _, c := range []string{"r", "g", "b"} {
		out = append(out, c+"_mean", c+"_std", c+"_skew")
	}

	return out
}
