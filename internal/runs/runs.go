package runs

import (
	"context"
	"errors"
	"fmt"
	"imgclass/internal/config"
	"imgclass/internal/train"
	"imgclass/pkg/domain"
	"imgclass/pkg/serrors"
	"imgclass/pkg/storage"
	"time"
)

// Options configure how training jobs are enqueued and how reports are cached.
// These settings are typically derived from application configuration.
type Options struct {
	// MaxAttempts is the maximum number of attempts the background worker should
	// make when processing a training job before marking the run failed.
	MaxAttempts int
	// ResultCacheTTL is the duration during which a completed report makes new
	// runs with an identical spec reuse that report instead of enqueueing
	// a duplicate job.
	ResultCacheTTL time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxAttempts:    cfg.Runs.MaxAttempts,
		ResultCacheTTL: cfg.Runs.ResultCacheTTL,
	}
}

// service is the concrete implementation of the Service interface.
// It coordinates persistence with the storage layer, job enqueueing and the
// training engine.
type service struct {
	// options holds runtime configuration that affects enqueueing and caching.
	options Options
	// storage is the persistence layer used to store runs and manage jobs.
	storage storage.Storage
	// engine executes the benchmark for a submitted spec.
	engine train.Engine
}

// Submit stores a new training run for the given spec and user, and attempts
// to enqueue a background job to process it. If a recent completed report exists
// for the same spec (within ResultCacheTTL), the new run is immediately marked
// as completed with that report.
func (s service) Submit(ctx context.Context, userID domain.UserID, spec domain.TrainSpec) (*domain.Run, error) {
	if err := train.ValidateSpec(spec); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid training spec")
	}

	specHash, err := train.SpecHash(spec)
	if err != nil {
		return nil, fmt.Errorf("could not hash spec: %w", err)
	}

	var run *domain.Run
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		res, err := tx.StoreRuns(ctx, domain.Run{
			UserID:   userID,
			SpecHash: specHash,
			Spec:     spec,
			Status:   domain.RunStatusPending,
		})
		if err != nil {
			return fmt.Errorf("could not store run: %w", err)
		}
		run = &res[0]

		jobAdded, err := tx.AddJob(ctx, JobArgs{
			SpecHash:        specHash,
			Spec:            spec,
			maxAttempts:     s.options.MaxAttempts,
			uniqueJobPeriod: s.options.ResultCacheTTL,
		}, nil)
		if err != nil {
			return fmt.Errorf("could not add job: %w", err)
		}

		// if a job was not added, it means that another job already exists for this spec.
		// river unique jobs prevent having duplicate jobs for the same spec.
		if !jobAdded {
			// if the existing job is already completed, we should get its report from db
			// and update the new run
			lastResult, err := tx.LastCompletedRunBySpecHash(ctx, specHash)
			if err != nil {
				return fmt.Errorf("could not get last completed run: %w", err)
			}

			if lastResult != nil {
				updated, err := tx.UpdateRunByID(ctx, run.ID, storage.RunUpdates{
					Status: domain.RunStatusCompleted,
					Report: &lastResult.Report,
				})
				if err != nil {
					return fmt.Errorf("could not update run: %w", err)
				}
				run = updated
			} // else: the job is in the queue and will be processed soon.
			// Job will automatically update all pending runs by spec hash upon completion.
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not submit run: %w", err)
	}

	return run, nil
}

// UserRuns returns a page of runs for the given user filtered by status.
// It supports cursor-based pagination using an RFC3339 timestamp string and
// returns the next cursor when more results are available.
func (s service) UserRuns(ctx context.Context,
	userID domain.UserID,
	status domain.RunStatus,
	cursor string,
	limit uint) ([]domain.Run, string, error) {
	var cursorTime time.Time
	if cursor != "" {
		t, err := time.Parse(time.RFC3339, cursor)
		if err != nil {
			return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
		}
		cursorTime = t
	}

	page, err := s.storage.UserRuns(ctx, userID, status, cursorTime, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get user runs: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.Format(time.RFC3339)
	}

	return page.Runs, next, nil
}

// Result fetches a single run by ID for the given user. It returns a
// not-found error when no matching run exists.
func (s service) Result(ctx context.Context, userID domain.UserID, runID domain.RunID) (*domain.Run, error) {
	res, err := s.storage.RunByID(ctx, userID, runID)
	if err != nil {
		return nil, fmt.Errorf("could not get run: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "run not found")
	}

	return res, nil
}

// Delete removes a run belonging to the given user. If the run does not
// exist, a not-found error is returned. Jobs are not cancelled here because
// other pending runs may still depend on the same spec job.
func (s service) Delete(ctx context.Context, userID domain.UserID, runID domain.RunID) error {
	res, err := s.storage.DeleteRun(ctx, userID, runID)
	if err != nil {
		return fmt.Errorf("could not delete run: %w", err)
	}
	if res == nil {
		return serrors.With(serrors.ErrNotFound, "run not found")
	}

	// we don't delete jobs from the queue here because there might be other runs depending on the job.
	// job worker makes sure there are still pending runs for the spec hash before processing.

	return nil
}

// Execute processes one training job on behalf of the background worker: it
// runs the benchmark for the given spec and fans the outcome out to every
// pending run with the same spec hash. On failure the runs stay pending until
// the attempt budget is exhausted, except for spec-level errors which can
// never succeed on retry and fail the runs immediately.
func (s service) Execute(ctx context.Context, specHash string, spec domain.TrainSpec) error {
	pending, err := s.storage.PendingRunCountBySpecHash(ctx, specHash)
	if err != nil {
		return fmt.Errorf("could not count pending runs: %w", err)
	}

	// all runs for this spec may have been deleted or satisfied from cache while
	// the job sat in the queue.
	if pending == 0 {
		return nil
	}

	res, err := s.engine.Run(ctx, spec)
	if err != nil {
		msg := err.Error()
		updates := storage.RunUpdates{
			Status:      domain.RunStatusFailed,
			LastError:   &msg,
			MaxAttempts: s.options.MaxAttempts,
		}
		if isPermanent(err) {
			// retrying the same spec cannot change the outcome, fail the runs now.
			updates.MaxAttempts = 0
		}

		if updateErr := s.storage.UpdatePendingRunsBySpecHash(ctx, specHash, updates); updateErr != nil {
			return fmt.Errorf("could not record run failure: %w", updateErr)
		}

		return fmt.Errorf("could not run benchmark: %w", err)
	}

	var cleared string
	if err := s.storage.UpdatePendingRunsBySpecHash(ctx, specHash, storage.RunUpdates{
		Status:    domain.RunStatusCompleted,
		Report:    &res.Report,
		LastError: &cleared,
	}); err != nil {
		return fmt.Errorf("could not record run report: %w", err)
	}

	return nil
}

// isPermanent reports whether a benchmark error is baked into the job's spec,
// meaning no retry can fix it.
func isPermanent(err error) bool {
	return errors.Is(err, train.ErrBadSpec) || errors.Is(err, train.ErrEmptyGrid)
}

// New creates a new Service instance backed by the provided storage and
// training engine, configured with the given options.
func New(storage storage.Storage, engine train.Engine, options Options) Service {
	return &service{
		options: options,
		storage: storage,
		engine:  engine,
	}
}
