// Package features turns images into fixed-length numeric descriptors.
//
// Every image is decoded, scaled to a common size and summarized by four
// hand-crafted descriptor families: color (HSV histogram and RGB channel
// statistics), texture (Haralick co-occurrence statistics and uniform local
// binary patterns), shape (Otsu-thresholded region properties and Hu moment
// invariants) and grayscale intensity statistics. The resulting vector
// always has Count entries in the order given by Names, so extracted
// datasets, trained models and prediction inputs stay interchangeable.
package features

import (
	"errors"
	"fmt"
	"imgclass/pkg/domain"
)

// Count is the fixed length of every feature vector.
const Count = colorCount + textureCount + shapeCount + intensityCount

// ErrSchemaMismatch is returned when a stored vector's length disagrees
// with the feature schema it is read against.
var ErrSchemaMismatch = errors.New("features: vector length does not match schema")

// Names returns the feature names in vector order. The slice is freshly
// allocated on every call.
func Names() []string {
	out := make([]string, 0, Count)
	out = append(out, colorNames()...)
	out = append(out, textureNames()...)
	out = append(out, shapeNames()...)
	out = append(out, intensityNames()...)

	return out
}

// Extract computes the full descriptor vector for a preprocessed image.
func Extract(p *Plane) domain.FeatureVector {
	out := make(domain.FeatureVector, 0, Count)
	out = append(out, colorFeatures(p)...)
	out = append(out, textureFeatures(p)...)
	out = append(out, shapeFeatures(p)...)
	out = append(out, intensityFeatures(p)...)

	return out
}

// ExtractFile decodes the image at path and computes its descriptor vector.
func ExtractFile(path string) (domain.FeatureVector, error) {
	p, err := DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not preprocess %s: %w", path, err)
	}

	return Extract(p), nil
}
