package runs

import (
	"time"

	"imgclass/pkg/domain"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// JobArgs contains the arguments for a training job submitted to River.
// The struct is used as the unique key for jobs to prevent duplicate work per spec.
type JobArgs struct {
	// SpecHash is the canonical hash of Spec. It is marked as unique so River
	// can enforce one job per spec according to InsertOpts.UniqueOpts.
	SpecHash string `json:"specHash" river:"unique"`
	// Spec carries the full training parameters so the worker can execute the
	// benchmark without loading a run row first.
	Spec domain.TrainSpec `json:"spec"`

	// maxAttempts configures the maximum number of times River should retry the job.
	maxAttempts int
	// uniqueJobPeriod defines the lookback window during which a job with the
	// same arguments is considered a duplicate across the specified states.
	uniqueJobPeriod time.Duration
}

// Kind returns the River job kind used to register and dispatch the training worker.
func (args JobArgs) Kind() string { return "TrainRunJob" }

// InsertOpts returns the River options that control how the job is enqueued,
// including the maximum retry attempts and uniqueness constraints to prevent
// duplicate jobs for the same spec across multiple job states.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		// make sure we only have one job per spec in any state
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: args.uniqueJobPeriod,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateCompleted,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
