package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"imgclass/pkg/domain"
	"time"

	"github.com/google/uuid"
)

type PgRun struct {
	ID     uuid.UUID `db:"id"      goqu:"skipinsert"`
	UserID uuid.UUID `db:"user_id"`

	SpecHash string `db:"spec_hash"`
	// Spec is a plain byte slice rather than json.RawMessage so goqu renders it
	// as a single literal when inserting.
	Spec   []byte          `db:"spec"`
	Status string          `db:"status"`
	Report json.RawMessage `db:"report" goqu:"skipinsert"`

	Attempts  uint           `db:"attempts"   goqu:"skipinsert"`
	LastError sql.NullString `db:"last_error" goqu:"skipinsert"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
	DeletedAt sql.NullTime `db:"deleted_at" goqu:"skipinsert"`
}

// TODO: use https://github.com/jmattheis/goverter for converting

func (p *PgRun) ToDomain() (*domain.Run, error) {
	var spec domain.TrainSpec
	if err := json.Unmarshal(p.Spec, &spec); err != nil {
		return nil, fmt.Errorf("could not unmarshal run spec: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(p.Report, &report); err != nil {
		return nil, fmt.Errorf("could not unmarshal run report: %w", err)
	}

	return &domain.Run{
		ID:        domain.RunID(p.ID),
		UserID:    domain.UserID(p.UserID),
		SpecHash:  p.SpecHash,
		Spec:      spec,
		Status:    domain.RunStatus(p.Status),
		Report:    report,
		Attempts:  p.Attempts,
		LastError: p.LastError.String,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
		DeletedAt: p.DeletedAt.Time,
	}, nil
}

func (p *PgRun) FromDomain(run domain.Run) error {
	spec, err := json.Marshal(run.Spec)
	if err != nil {
		return fmt.Errorf("could not marshal run spec: %w", err)
	}

	report, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("could not marshal run report: %w", err)
	}

	*p = PgRun{
		ID:       uuid.UUID(run.ID),
		UserID:   uuid.UUID(run.UserID),
		SpecHash: run.SpecHash,
		Spec:     spec,
		Status:   string(run.Status),
		Report:   report,
		Attempts: run.Attempts,
		LastError: sql.NullString{
			String: run.LastError,
			Valid:  run.LastError != "",
		},
		CreatedAt: run.CreatedAt,
		UpdatedAt: sql.NullTime{
			Time:  run.UpdatedAt,
			Valid: !run.UpdatedAt.IsZero(),
		},
		DeletedAt: sql.NullTime{
			Time:  run.DeletedAt,
			Valid: !run.DeletedAt.IsZero(),
		},
	}

	return nil
}

func domainRunsToPg(runs []domain.Run) ([]PgRun, error) {
	out := make([]PgRun, len(runs))
	for i := range out {
		if err := out[i].FromDomain(runs[i]); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func pgRunsToDomain(runs []PgRun) ([]domain.Run, error) {
	out := make([]domain.Run, 0, len(runs))
	for _, run := range runs {
		d, err := run.ToDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, *d)
	}

	return out, nil
}
