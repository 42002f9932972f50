package train

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"imgclass/internal/classifier"
	"imgclass/internal/features"
	"imgclass/pkg/domain"

	"gonum.org/v1/gonum/mat"
)

// artifactSchemaVersion guards against loading artifacts written by an
// incompatible build.
const artifactSchemaVersion = 1

// ErrBadArtifact is returned when a model file is structurally unusable.
var ErrBadArtifact = errors.New("train: invalid model artifact")

// Artifact is the trained model file: the feature schema and label set the
// model was fitted against, the fitted scaler and estimator, and the
// benchmark report that produced them.
type Artifact struct {
	SchemaVersion int                       `json:"schemaVersion"`
	CreatedAt     time.Time                 `json:"createdAt"`
	FeatureNames  []string                  `json:"featureNames"`
	Labels        []string                  `json:"labels"`
	Scaler        classifier.StandardScaler `json:"scaler"`
	Model         classifier.Model          `json:"model"`
	Report        domain.Report             `json:"report"`
}

// SaveArtifact writes the artifact as indented JSON.
func SaveArtifact(path string, a *Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode model artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint: gosec
		return fmt.Errorf("could not write model artifact: %w", err)
	}

	return nil
}

// LoadArtifact reads a model file and validates its internal consistency
// before it is used for prediction.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read model artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("could not decode model artifact: %w", err)
	}

	if a.SchemaVersion != artifactSchemaVersion {
		return nil, fmt.Errorf("%w: schema version %d, want %d", ErrBadArtifact, a.SchemaVersion, artifactSchemaVersion)
	}
	if len(a.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: no feature schema", ErrBadArtifact)
	}
	if len(a.Labels) == 0 {
		return nil, fmt.Errorf("%w: no labels", ErrBadArtifact)
	}
	if len(a.Scaler.Means) != len(a.FeatureNames) || len(a.Scaler.Stds) != len(a.FeatureNames) {
		return nil, fmt.Errorf("%w: scaler covers %d features, schema has %d", ErrBadArtifact, len(a.Scaler.Means), len(a.FeatureNames))
	}
	if a.Model.Estimator == nil {
		return nil, fmt.Errorf("%w: no fitted model", ErrBadArtifact)
	}

	return &a, nil
}

// Predict classifies one extracted feature vector.
func (a *Artifact) Predict(vec domain.FeatureVector) (domain.Prediction, error) {
	if len(vec) != len(a.FeatureNames) {
		return domain.Prediction{}, fmt.Errorf("%w: vector has %d values, model expects %d",
			features.ErrSchemaMismatch, len(vec), len(a.FeatureNames))
	}

	scaled, err := a.Scaler.TransformVector(vec)
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("scaling input: %w", err)
	}

	scores, err := a.Model.Estimator.Scores(mat.NewDense(1, len(scaled), scaled))
	if err != nil {
		return domain.Prediction{}, fmt.Errorf("scoring input: %w", err)
	}
	row := scores.RawRowView(0)

	// the estimator may know fewer classes than the artifact lists when a
	// class never reached the training split; those score zero
	byLabel := make(map[string]float64, len(a.Labels))
	best := 0
	for i, label := range a.Labels {
		score := 0.0
		if i < len(row) {
			score = row[i]
		}
		byLabel[label] = score
		if score > byLabel[a.Labels[best]] {
			best = i
		}
	}

	return domain.Prediction{
		Class:      a.Labels[best],
		Confidence: byLabel[a.Labels[best]],
		Scores:     byLabel,
	}, nil
}

// PredictFile extracts features from the image at path and classifies
// them.
func (a *Artifact) PredictFile(path string) (domain.Prediction, error) {
	vec, err := features.ExtractFile(path)
	if err != nil {
		return domain.Prediction{}, err
	}

	return a.Predict(vec)
}
