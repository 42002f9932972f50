package train

import (
	"context"
	"fmt"

	"imgclass/internal/config"
	"imgclass/internal/dataset"
	"imgclass/internal/features"
	"imgclass/pkg/domain"
)

// Options configure where the training data lives and how extraction runs.
// These settings are typically derived from application configuration.
type Options struct {
	// ManifestPath is the image,label CSV naming the dataset. Image paths in
	// the manifest resolve relative to its directory.
	ManifestPath string
	// Workers bounds the feature-extraction worker pool; 0 means one worker
	// per CPU.
	Workers int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		ManifestPath: cfg.Dataset.ManifestPath,
		Workers:      cfg.Dataset.Workers,
	}
}

// SpecFromConfig builds the training spec declared by the application
// config. Callers may override individual fields before submitting it.
func SpecFromConfig(cfg *config.Config) domain.TrainSpec {
	return domain.TrainSpec{
		TestFraction: cfg.Training.TestFraction,
		Folds:        cfg.Training.Folds,
		Seed:         cfg.Training.Seed,
		TopK:         cfg.Training.TopK,
		KNN: domain.KNNGrid{
			K:       cfg.Training.KNN.K,
			Weights: cfg.Training.KNN.Weights,
		},
		Forest: domain.ForestGrid{
			Trees:    cfg.Training.Forest.Trees,
			MaxDepth: cfg.Training.Forest.MaxDepth,
			MinLeaf:  cfg.Training.Forest.MinLeaf,
		},
		SVM: domain.SVMGrid{
			Lambda: cfg.Training.SVM.Lambda,
			Epochs: cfg.Training.SVM.Epochs,
		},
	}
}

// engine is the concrete implementation of the Engine interface. It wires
// the dataset, feature and benchmark layers into one run.
type engine struct {
	// options holds the dataset location and extraction settings.
	options Options
}

// Run loads the manifest, extracts feature vectors and executes the
// benchmark for the given spec.
func (e engine) Run(ctx context.Context, spec domain.TrainSpec) (*Result, error) {
	samples, err := dataset.LoadManifest(e.options.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("could not load manifest: %w", err)
	}

	vectors, skipped, err := features.ExtractAll(ctx, samples, e.options.Workers)
	if err != nil {
		return nil, fmt.Errorf("could not extract features: %w", err)
	}

	res, err := Benchmark(ctx, vectors, features.Names(), skipped, spec)
	if err != nil {
		return nil, fmt.Errorf("could not run benchmark: %w", err)
	}

	return res, nil
}

// NewEngine creates an Engine configured with the given options.
func NewEngine(options Options) Engine {
	return &engine{options: options}
}
