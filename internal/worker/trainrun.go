package worker

import (
	"context"
	"errors"
	"fmt"
	"imgclass/internal/runs"
	"imgclass/internal/train"
	"imgclass/pkg/logger"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// TrainRunWorker is a River worker that executes training benchmarks through a
// runs.Service implementation. It embeds River's WorkerDefaults to integrate
// with the job runtime. Concurrency is bounded by the queue's MaxWorkers since
// every job saturates the extraction worker pool on its own.
//
// Error handling: spec-level errors can never succeed on retry, so the job is
// canceled. Other errors are logged and returned so River retries the job; the
// service mirrors River's attempt budget onto the pending run rows, marking
// them failed once the final attempt is exhausted.
type TrainRunWorker struct {
	river.WorkerDefaults[runs.JobArgs]

	// service runs the benchmark and fans the outcome out to pending runs.
	service runs.Service
}

// NewTrainRunWorker constructs a TrainRunWorker using the provided service.
func NewTrainRunWorker(service runs.Service) *TrainRunWorker {
	return &TrainRunWorker{service: service}
}

// Work executes a single training job and maps errors to appropriate River
// actions.
func (w *TrainRunWorker) Work(ctx context.Context, job *river.Job[runs.JobArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.String("specHash", job.Args.SpecHash))

	if err := w.service.Execute(ctx, job.Args.SpecHash, job.Args.Spec); err != nil {
		if errors.Is(err, train.ErrBadSpec) || errors.Is(err, train.ErrEmptyGrid) {
			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error in executing training run", zap.Error(err))

		return fmt.Errorf("could not execute training run: %w", err)
	}

	logger.Info(ctx, "training run executed successfully")

	return nil
}
