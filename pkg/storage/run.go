package storage

import (
	"context"
	"imgclass/pkg/domain"
	"time"
)

// RunUpdates describes a set of optional fields that can be applied to an
// existing run during an update. Only non-nil fields will be updated.
type RunUpdates struct {
	// Status is the new status to set for the run.
	Status domain.RunStatus
	// Report, when provided, replaces the stored benchmark report payload.
	Report *domain.Report
	// LastError, when provided, sets the last error text. An empty string value
	// indicates the error should be cleared (set to NULL).
	LastError *string
	// MaxAttempts, when provided alongside a Failed status, ensures that status
	// is only updated to Failed once the attempts after increment reach this
	// threshold. A value <= 0 disables this guard.
	MaxAttempts int
}

// UserRuns groups a page of runs returned for a user together with an
// optional NextCursor used for pagination.
type UserRuns struct {
	// Runs contains the current page of run records.
	Runs []domain.Run
	// NextCursor points to the timestamp to be used as the cursor for fetching
	// the next page. It is nil when there is no next page.
	NextCursor *time.Time
}

// RunStorage defines CRUD and query operations related to training runs.
// Implementations should ensure idempotency and proper handling of
// soft-deletes where applicable.
type RunStorage interface {
	// StoreRuns inserts one or more runs and returns the stored rows as they
	// exist in the database (including generated fields).
	StoreRuns(ctx context.Context, runs ...domain.Run) ([]domain.Run, error)
	// UpdatePendingRunsBySpecHash updates all pending runs for the given spec
	// hash using the provided field set.
	// Notes:
	// - Attempts is incremented by 1 and updated_at is set automatically.
	// - If Status is Failed and MaxAttempts > 0, status is only set to Failed
	//   when the attempts after increment reach MaxAttempts; otherwise status
	//   remains unchanged (i.e., stays Pending).
	UpdatePendingRunsBySpecHash(ctx context.Context, specHash string, updates RunUpdates) error
	// PendingRunCountBySpecHash returns the total number of pending runs for the
	// given spec hash across all users. Soft-deleted records are excluded from the count.
	PendingRunCountBySpecHash(ctx context.Context, specHash string) (int64, error)
	// UpdateRunByID updates a single run identified by its ID and returns the updated row.
	// The update ignores soft-deleted rows and sets updated_at automatically. Only provided fields are changed.
	UpdateRunByID(ctx context.Context, ID domain.RunID, updates RunUpdates) (*domain.Run, error)
	// DeleteRun performs a soft delete for the given run ID and user ID and
	// returns the deleted run, or nil if it was not found.
	DeleteRun(ctx context.Context, userID domain.UserID, ID domain.RunID) (*domain.Run, error)
	// UserRuns returns a page of runs for a user created before the optional
	// cursor time, limited by the given limit. If status is non-empty, results are
	// filtered to records with the given status.
	UserRuns(ctx context.Context,
		userID domain.UserID,
		status domain.RunStatus,
		cursor time.Time,
		limit uint) (UserRuns, error)
	// RunByID fetches a run by its ID for the given user, excluding soft-deleted
	// records. Returns nil when not found.
	RunByID(ctx context.Context, userID domain.UserID, ID domain.RunID) (*domain.Run, error)
	// LastCompletedRunBySpecHash returns the most recent completed run for a given
	// spec hash across all users. Returns nil when no completed run exists for the hash.
	LastCompletedRunBySpecHash(ctx context.Context, specHash string) (*domain.Run, error)
}
