package train

import (
	"context"
	"imgclass/pkg/domain"
)

//go:generate mockgen -package mocktrain -source=interface.go -destination=mock/mockengine.go *
type Engine interface {
	// Run executes the full benchmark for the given training spec: load the
	// manifest, extract features, grid-search and evaluate. The returned
	// result carries the report and the refitted winner artifact.
	Run(ctx context.Context, spec domain.TrainSpec) (*Result, error)
}
