package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunID uniquely identifies a training run.
// It wraps uuid.UUID to provide type safety at the domain layer.
type RunID uuid.UUID

// RunStatus represents the lifecycle state of a training run.
// It can be pending, completed, or failed.
type RunStatus string

const (
	// RunStatusPending indicates the run has been enqueued but not processed yet.
	RunStatusPending RunStatus = "PENDING"
	// RunStatusCompleted indicates the benchmark finished and a report is available.
	RunStatusCompleted RunStatus = "COMPLETED"
	// RunStatusFailed indicates the run ended with an error; see LastError and Attempts for details.
	RunStatusFailed RunStatus = "FAILED"
)

// Run represents a single training-run request and its current state.
// It tracks the requested training spec, status, benchmark report, error
// information, and timestamps.
type Run struct {
	// ID is the unique identifier of the run.
	ID RunID `json:"id"`
	// UserID is the identifier of the user who submitted the run.
	UserID UserID `json:"userId"`

	// SpecHash is the canonical hash of Spec, used to deduplicate identical runs.
	SpecHash string `json:"specHash"`
	// Spec holds the training parameters the benchmark executes.
	Spec TrainSpec `json:"spec"`
	// Status is the current lifecycle state of the run.
	Status RunStatus `json:"status"`
	// Report contains the benchmark outcome once the run completed.
	Report Report `json:"report"`

	// Attempts is the number of times the system has tried to process this run.
	Attempts uint `json:"attempts"`
	// LastError stores the most recent error message, if any, encountered while processing the run.
	LastError string `json:"-"`

	// CreatedAt is the time when the run was submitted.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time when the run was last updated (e.g., status or report changed).
	UpdatedAt time.Time `json:"updatedAt"`
	// DeletedAt marks when the run was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}
