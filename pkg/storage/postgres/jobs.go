package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivertype"
)

// AddJob enqueues a River job, typically a training run. When PgSQL operates
// inside a transaction the insert joins it, so the job only becomes visible
// once the surrounding transaction commits; otherwise it is visible as soon
// as the insert succeeds. The clients created here are insert-only and carry
// no workers.
//
// The returned bool reports whether a row was actually inserted; it is false
// when uniqueness options matched an existing job and the insert was skipped.
func (p *PgSQL) AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	var res *rivertype.JobInsertResult

	switch db := p.DB.(type) {
	case *sql.Tx:
		riverClient, err := river.NewClient(riverdatabasesql.New(nil), &river.Config{})
		if err != nil {
			return false, fmt.Errorf("could not create river queue client: %w", err)
		}

		res, err = riverClient.InsertTx(ctx, db, args, opts)
		if err != nil {
			return false, fmt.Errorf("could not insert job: %w", err)
		}
	case *sql.DB:
		riverClient, err := river.NewClient(riverdatabasesql.New(db), &river.Config{})
		if err != nil {
			return false, fmt.Errorf("could not create river queue client: %w", err)
		}

		res, err = riverClient.Insert(ctx, args, opts)
		if err != nil {
			return false, fmt.Errorf("could not insert job: %w", err)
		}
	default:
		return false, fmt.Errorf("unsupported db handle %T", p.DB)
	}

	return !res.UniqueSkippedAsDuplicate, nil
}
