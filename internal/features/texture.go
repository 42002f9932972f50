package features

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	// grayLevels is the quantization depth used for co-occurrence matrices.
	grayLevels = 16

	// lbpBins is the size of the uniform LBP histogram for 8 neighbors:
	// 58 uniform patterns plus one bin for all non-uniform codes.
	lbpBins = 59
)

// textureCount is the number of texture features: five Haralick statistics
// averaged over four directions, plus the uniform LBP histogram.
const textureCount = 5 + lbpBins

// glcmOffsets are the four co-occurrence directions (0, 90, 45 and 135
// degrees at distance one).
var glcmOffsets = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// lbpTable maps an 8-bit LBP code to its histogram bin. Codes with at most
// two circular 0-1 transitions get their own bin in ascending code order;
// all remaining codes share the last bin.
var lbpTable = buildLBPTable()

func buildLBPTable() [256]int {
	var table [256]int
	next := 0
	for code := 0; code < 256; code++ {
		// circular transition count between adjacent bits
		rotated := byte(code)<<1 | byte(code)>>7
		if bits.OnesCount8(byte(code)^rotated) <= 2 {
			table[code] = next
			next++
		} else {
			table[code] = lbpBins - 1
		}
	}

	return table
}

// quantize maps a gray value in [0, 1] to one of grayLevels levels.
func quantize(v float64) int {
	q := int(v * grayLevels)
	if q >= grayLevels {
		q = grayLevels - 1
	}
	if q < 0 {
		q = 0
	}

	return q
}

// glcmStats computes contrast, correlation, energy, homogeneity and entropy
// of the symmetric co-occurrence matrix for one direction.
func glcmStats(p *Plane, dx, dy int) (contrast, correlation, energy, homogeneity, entropy float64) {
	var glcm [grayLevels][grayLevels]float64
	total := 0.0

	for y := 0; y < p.H; y++ {
		ny := y + dy
		if ny < 0 || ny >= p.H {
			continue
		}
		for x := 0; x < p.W; x++ {
			nx := x + dx
			if nx < 0 || nx >= p.W {
				continue
			}

			a := quantize(p.Gray.At(y, x))
			b := quantize(p.Gray.At(ny, nx))
			glcm[a][b]++
			glcm[b][a]++
			total += 2
		}
	}
	if total == 0 {
		return 0, 1, 0, 0, 0
	}

	// marginal mean and variance (symmetric matrix, both margins agree)
	var mean float64
	for i := 0; i < grayLevels; i++ {
		var pi float64
		for j := 0; j < grayLevels; j++ {
			pi += glcm[i][j] / total
		}
		mean += float64(i) * pi
	}
	var variance float64
	for i := 0; i < grayLevels; i++ {
		var pi float64
		for j := 0; j < grayLevels; j++ {
			pi += glcm[i][j] / total
		}
		variance += (float64(i) - mean) * (float64(i) - mean) * pi
	}

	var crossMoment float64
	for i := 0; i < grayLevels; i++ {
		for j := 0; j < grayLevels; j++ {
			pij := glcm[i][j] / total
			if pij == 0 {
				continue
			}

			d := float64(i - j)
			contrast += d * d * pij
			energy += pij * pij
			homogeneity += pij / (1 + d*d)
			entropy -= pij * math.Log2(pij)
			crossMoment += float64(i) * float64(j) * pij
		}
	}

	if variance == 0 {
		// constant image: perfectly correlated by convention
		correlation = 1
	} else {
		correlation = (crossMoment - mean*mean) / variance
	}

	return contrast, correlation, energy, homogeneity, entropy
}

// lbpHistogram computes the normalized uniform LBP histogram with eight
// neighbors at radius one. Border pixels are not sampled.
func lbpHistogram(p *Plane) []float64 {
	hist := make([]float64, lbpBins)
	if p.W < 3 || p.H < 3 {
		return hist
	}

	// neighbor offsets in fixed circular order
	offs := [8][2]int{{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1}}

	total := 0.0
	for y := 1; y < p.H-1; y++ {
		for x := 1; x < p.W-1; x++ {
			center := p.Gray.At(y, x)
			code := 0
			for i, o := range offs {
				if p.Gray.At(y+o[1], x+o[0]) >= center {
					code |= 1 << i
				}
			}
			hist[lbpTable[code]]++
			total++
		}
	}
	for i := range hist {
		hist[i] /= total
	}

	return hist
}

// textureFeatures computes the direction-averaged Haralick statistics
// followed by the uniform LBP histogram.
func textureFeatures(p *Plane) []float64 {
	out := make([]float64, 0, textureCount)

	var contrast, correlation, energy, homogeneity, entropy float64
	for _, off := range glcmOffsets {
		c, r, e, h, s := glcmStats(p, off[0], off[1])
		contrast += c
		correlation += r
		energy += e
		homogeneity += h
		entropy += s
	}
	n := float64(len(glcmOffsets))
	out = append(out, contrast/n, correlation/n, energy/n, homogeneity/n, entropy/n)

	out = append(out, lbpHistogram(p)...)

	return out
}

// textureNames returns the feature names in the order textureFeatures emits
// them.
func textureNames() []string {
	out := make([]string, 0, textureCount)
	out = append(out, "glcm_contrast", "glcm_correlation", "glcm_energy", "glcm_homogeneity", "glcm_entropy")
	for i := 0; i < lbpBins; i++ {
		out = append(out, fmt.Sprintf("lbp_u2_%02d", i))
	}

	return out
}
