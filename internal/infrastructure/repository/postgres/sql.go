package postgres

import (
	"context"
	"database/sql"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/hooplake/hooplake/internal/domain/game"
)

func isNotFound(err error) bool {
	return crerr.Is(err, sql.ErrNoRows)
}

func runInTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return crerr.Wrap(err, "begin tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return crerr.Wrap(tx.Commit(), "commit tx")
}

// execUpsert runs a diff-aware upsert and tallies the RETURNING rows. Rows
// skipped by the diff gate return nothing, so unchanged re-ingests report
// zero inserts and zero updates.
func execUpsert(ctx context.Context, tx *sqlx.Tx, query string, args []any) (game.UpsertResult, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "exec upsert")
	}
	defer rows.Close()

	var result game.UpsertResult
	for rows.Next() {
		var inserted bool
		if err := rows.Scan(&inserted); err != nil {
			return game.UpsertResult{}, crerr.Wrap(err, "scan upsert result")
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
	return result, crerr.Wrap(rows.Err(), "iterate upsert result")
}

func add(a, b game.UpsertResult) game.UpsertResult {
	return game.UpsertResult{Inserted: a.Inserted + b.Inserted, Updated: a.Updated + b.Updated}
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
