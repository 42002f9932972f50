package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"imgclass/pkg/domain"
	"imgclass/pkg/storage"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
)

const (
	runsTable = "runs"
)

func (p *PgSQL) StoreRuns(ctx context.Context, runs ...domain.Run) ([]domain.Run, error) {
	if len(runs) == 0 {
		return nil, nil
	}

	pgRuns, err := domainRunsToPg(runs)
	if err != nil {
		return nil, err
	}

	var result []PgRun
	if err := p.Builder.Insert(runsTable).
		Rows(pgRuns).
		Returning(&PgRun{}).
		Executor().ScanStructsContext(ctx, &result); err != nil {
		return nil, fmt.Errorf("could not store runs into pg: %w", err)
	}

	return pgRunsToDomain(result)
}

// updateRecord builds the goqu record shared by the run update methods. Only
// provided fields from updates are set, updated_at is always refreshed.
func updateRecord(updates storage.RunUpdates) (goqu.Record, error) {
	rec := goqu.Record{
		"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		"status":     updates.Status,
	}
	if updates.Report != nil {
		b, err := json.Marshal(updates.Report)
		if err != nil {
			return nil, fmt.Errorf("could not marshal report: %w", err)
		}

		rec["report"] = b
	}
	if updates.LastError != nil {
		if *updates.LastError == "" {
			// set to NULL when empty string provided
			rec["last_error"] = goqu.L("NULL")
		} else {
			rec["last_error"] = *updates.LastError
		}
	}

	return rec, nil
}

// UpdatePendingRunsBySpecHash updates all pending runs for the given spec hash with provided fields.
// Attempts is incremented by 1 and updated_at is set. When updates request a Failed status and carry
// a positive MaxAttempts, the status only flips to Failed once the incremented attempts reach that
// threshold, so runs stay pending while the queue still retries them.
func (p *PgSQL) UpdatePendingRunsBySpecHash(ctx context.Context, specHash string, updates storage.RunUpdates) error {
	rec, err := updateRecord(updates)
	if err != nil {
		return err
	}
	rec["attempts"] = goqu.L("attempts + 1")
	if updates.Status == domain.RunStatusFailed && updates.MaxAttempts > 0 {
		rec["status"] = goqu.L("CASE WHEN attempts + 1 >= ? THEN ? ELSE status END",
			updates.MaxAttempts, string(domain.RunStatusFailed))
	}

	_, err = p.Builder.Update(runsTable).
		Set(rec).Where(
		goqu.I("spec_hash").Eq(specHash),
		goqu.I("status").Eq(string(domain.RunStatusPending)),
		goqu.I("deleted_at").IsNull(),
	).Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not update pending runs by spec hash in pg: %w", err)
	}

	return nil
}

// PendingRunCountBySpecHash counts pending runs for a spec hash across all users,
// excluding soft-deleted rows.
func (p *PgSQL) PendingRunCountBySpecHash(ctx context.Context, specHash string) (int64, error) {
	count, err := p.Builder.From(runsTable).
		Where(
			goqu.I("spec_hash").Eq(specHash),
			goqu.I("status").Eq(string(domain.RunStatusPending)),
			goqu.I("deleted_at").IsNull(),
		).CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not count pending runs by spec hash in pg: %w", err)
	}

	return count, nil
}

// UpdateRunByID updates a single run by its ID, ignoring soft-deleted rows, and
// returns the updated record. Unlike UpdatePendingRunsBySpecHash it does not touch
// the attempts counter, so it is safe for cache-driven completions.
func (p *PgSQL) UpdateRunByID(ctx context.Context, id domain.RunID, updates storage.RunUpdates) (*domain.Run, error) {
	rec, err := updateRecord(updates)
	if err != nil {
		return nil, err
	}

	var row PgRun
	found, err := p.Builder.Update(runsTable).
		Set(rec).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgRun{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update run by id in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// DeleteRun performs a soft delete by setting deleted_at timestamp
// for a given run id and user, returning the deleted record.
func (p *PgSQL) DeleteRun(ctx context.Context, userID domain.UserID, id domain.RunID) (*domain.Run, error) {
	var row PgRun
	found, err := p.Builder.Update(runsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgRun{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete run in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// UserRuns returns a list of runs for a user filtered by optional status and cursor, limited by limit.
// Results are ordered by created_at DESC, id DESC. Returns the next cursor for pagination.
func (p *PgSQL) UserRuns(ctx context.Context,
	userID domain.UserID,
	status domain.RunStatus,
	cursor time.Time,
	limit uint) (storage.UserRuns, error) {
	w := []goqu.Expression{
		goqu.I("user_id").Eq(uuid.UUID(userID)),
		goqu.I("deleted_at").IsNull(),
	}
	if status != "" {
		w = append(w, goqu.I("status").Eq(string(status)))
	}
	if !cursor.IsZero() {
		w = append(w, goqu.I("created_at").Lt(cursor))
	}

	// fetch one extra to determine if there is a next page
	fetch := limit + 1
	ds := p.Builder.From(runsTable).
		Where(w...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(fetch)

	var rows []PgRun
	if err := ds.Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.UserRuns{}, fmt.Errorf("could not fetch user runs from pg: %w", err)
	}

	// if we fetched more than the limit, there is a next page
	var nextCursor *time.Time
	if uint(len(rows)) > limit {
		trimmed := rows[:limit]
		nextCursor = &trimmed[len(trimmed)-1].CreatedAt
		rows = trimmed
	}

	domainRows, err := pgRunsToDomain(rows)
	if err != nil {
		return storage.UserRuns{}, err
	}

	return storage.UserRuns{
		Runs:       domainRows,
		NextCursor: nextCursor,
	}, nil
}

// RunByID returns a run by its ID, excluding soft-deleted rows.
func (p *PgSQL) RunByID(ctx context.Context, userID domain.UserID, id domain.RunID) (*domain.Run, error) {
	var row PgRun
	found, err := p.Builder.From(runsTable).
		Where(
			goqu.I("id").Eq(uuid.UUID(id)),
			goqu.I("user_id").Eq(uuid.UUID(userID)),
			goqu.I("deleted_at").IsNull(),
		).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch run by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}

// LastCompletedRunBySpecHash returns the most recent completed run for a spec hash
// across all users, or nil when none exists.
func (p *PgSQL) LastCompletedRunBySpecHash(ctx context.Context, specHash string) (*domain.Run, error) {
	var row PgRun
	found, err := p.Builder.From(runsTable).
		Where(
			goqu.I("spec_hash").Eq(specHash),
			goqu.I("status").Eq(string(domain.RunStatusCompleted)),
			goqu.I("deleted_at").IsNull(),
		).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Desc()).
		Limit(1).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch last completed run by spec hash: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain()
}
