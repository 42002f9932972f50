package features

import (
	"math"
)

// shapeCount is the number of shape features: six region properties of the
// Otsu-binarized image plus seven log-compressed Hu moments.
const shapeCount = 6 + 7

// otsuThreshold computes the threshold in [0, 1] that maximizes the
// between-class variance of the 256-bin gray histogram.
func otsuThreshold(gray []float64) float64 {
	const bins = 256

	hist := make([]float64, bins)
	for _, v := range gray {
		b := int(v * bins)
		if b >= bins {
			b = bins - 1
		}
		hist[b]++
	}

	total := float64(len(gray))
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * c
	}

	var sumBg, weightBg float64
	bestVar, bestThr := -1.0, 0
	for t := 0; t < bins; t++ {
		weightBg += hist[t]
		if weightBg == 0 {
			continue
		}
		weightFg := total - weightBg
		if weightFg == 0 {
			break
		}

		sumBg += float64(t) * hist[t]
		meanBg := sumBg / weightBg
		meanFg := (sumAll - sumBg) / weightFg

		between := weightBg * weightFg * (meanBg - meanFg) * (meanBg - meanFg)
		if between > bestVar {
			bestVar = between
			bestThr = t
		}
	}

	return float64(bestThr+1) / bins
}

// regionProps computes area fraction, normalized centroid offsets, extent,
// compactness and eccentricity of the thresholded foreground.
func regionProps(p *Plane, threshold float64) []float64 {
	w, h := p.W, p.H

	mask := make([]bool, w*h)
	area := 0.0
	var sumX, sumY float64
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if p.Gray.At(y, x) < threshold {
				continue
			}

			mask[y*w+x] = true
			area++
			sumX += float64(x)
			sumY += float64(y)
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if area == 0 {
		return make([]float64, 6)
	}

	cx := sumX / area
	cy := sumY / area
	dx := (cx - float64(w-1)/2) / float64(w)
	dy := (cy - float64(h-1)/2) / float64(h)

	bbox := float64((maxX - minX + 1) * (maxY - minY + 1))
	extent := area / bbox

	// boundary pixels: foreground with a background 4-neighbor or on the border
	perimeter := 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			if x == 0 || y == 0 || x == w-1 || y == h-1 ||
				!mask[y*w+x-1] || !mask[y*w+x+1] || !mask[(y-1)*w+x] || !mask[(y+1)*w+x] {
				perimeter++
			}
		}
	}
	compactness := math.Min(1, 4*math.Pi*area/(perimeter*perimeter))

	// eccentricity from the central second moments of the mask
	var mu20, mu02, mu11 float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			ex := float64(x) - cx
			ey := float64(y) - cy
			mu20 += ex * ex
			mu02 += ey * ey
			mu11 += ex * ey
		}
	}
	common := math.Sqrt((mu20-mu02)*(mu20-mu02) + 4*mu11*mu11)
	lambdaMax := (mu20 + mu02 + common) / 2
	lambdaMin := (mu20 + mu02 - common) / 2
	eccentricity := 0.0
	if lambdaMax > 0 {
		ratio := lambdaMin / lambdaMax
		if ratio < 0 {
			ratio = 0
		}
		eccentricity = math.Sqrt(1 - ratio)
	}

	return []float64{area / float64(w*h), dx, dy, extent, compactness, eccentricity}
}

// huMoments computes the seven Hu invariants of the gray plane, treating
// intensity as mass. Each invariant is log-compressed to a usable scale.
func huMoments(p *Plane) []float64 {
	var m00, m10, m01 float64
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			v := p.Gray.At(y, x)
			m00 += v
			m10 += float64(x) * v
			m01 += float64(y) * v
		}
	}
	if m00 == 0 {
		return make([]float64, 7)
	}

	cx := m10 / m00
	cy := m01 / m00

	var mu20, mu02, mu11, mu30, mu03, mu21, mu12 float64
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			v := p.Gray.At(y, x)
			ex := float64(x) - cx
			ey := float64(y) - cy
			mu20 += ex * ex * v
			mu02 += ey * ey * v
			mu11 += ex * ey * v
			mu30 += ex * ex * ex * v
			mu03 += ey * ey * ey * v
			mu21 += ex * ex * ey * v
			mu12 += ex * ey * ey * v
		}
	}

	norm := func(mu float64, order float64) float64 {
		return mu / math.Pow(m00, 1+order/2)
	}
	n20 := norm(mu20, 2)
	n02 := norm(mu02, 2)
	n11 := norm(mu11, 2)
	n30 := norm(mu30, 3)
	n03 := norm(mu03, 3)
	n21 := norm(mu21, 3)
	n12 := norm(mu12, 3)

	h1 := n20 + n02
	h2 := (n20-n02)*(n20-n02) + 4*n11*n11
	h3 := (n30-3*n12)*(n30-3*n12) + (3*n21-n03)*(3*n21-n03)
	h4 := (n30+n12)*(n30+n12) + (n21+n03)*(n21+n03)
	h5 := (n30-3*n12)*(n30+n12)*((n30+n12)*(n30+n12)-3*(n21+n03)*(n21+n03)) +
		(3*n21-n03)*(n21+n03)*(3*(n30+n12)*(n30+n12)-(n21+n03)*(n21+n03))
	h6 := (n20-n02)*((n30+n12)*(n30+n12)-(n21+n03)*(n21+n03)) +
		4*n11*(n30+n12)*(n21+n03)
	h7 := (3*n21-n03)*(n30+n12)*((n30+n12)*(n30+n12)-3*(n21+n03)*(n21+n03)) -
		(n30-3*n12)*(n21+n03)*(3*(n30+n12)*(n30+n12)-(n21+n03)*(n21+n03))

	hu := []float64{h1, h2, h3, h4, h5, h6, h7}
	out := make([]float64, len(hu))
	for i, v := range hu {
		// signed log compression keeps sign while taming the magnitude range
		s := 1.0
		if v < 0 {
			s = -1
		}
		out[i] = -s * math.Log10(math.Abs(v)+1e-30)
	}

	return out
}

// shapeFeatures computes the region properties of the Otsu-thresholded
// image followed by the Hu moment invariants.
func shapeFeatures(p *Plane) []float64 {
	out := make([]float64, 0, shapeCount)
	out = append(out, regionProps(p, otsuThreshold(p.GrayValues()))...)
	out = append(out, huMoments(p)...)

	return out
}

// shapeNames returns the feature names in the order shapeFeatures emits them.
func shapeNames() []string {
	return []string{
		"area_fraction", "centroid_dx", "centroid_dy", "extent", "compactness", "eccentricity",
		"hu_1", "hu_2", "hu_3", "hu_4", "hu_5", "hu_6", "hu_7",
	}
}
