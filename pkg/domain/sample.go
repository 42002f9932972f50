package domain

// Sample is one labeled image of a dataset: the image path relative to the
// dataset's image root, and the class label assigned by the manifest.
// A dataset is valid only when every path carries exactly one label.
type Sample struct {
	// Path identifies the image file, relative to the dataset image root.
	Path string `json:"path"`
	// Label is the class name assigned to the image.
	Label string `json:"label"`
}

// FeatureVector is the fixed-length numeric description of one image produced
// by the extraction pipeline. Its length always equals the declared feature
// count of the schema that produced it; the features package enforces this.
type FeatureVector []float64

// LabeledVector pairs an extracted feature vector with the sample it
// describes. It is the unit the training pipeline consumes.
type LabeledVector struct {
	Sample Sample        `json:"sample"`
	Values FeatureVector `json:"values"`
}
