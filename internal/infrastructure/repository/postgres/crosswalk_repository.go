package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/hooplake/hooplake/internal/domain/crosswalk"
	"github.com/hooplake/hooplake/internal/domain/game"
	qb "github.com/hooplake/hooplake/internal/platform/querybuilder"
)

type CrosswalkRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewCrosswalkRepository(db *sqlx.DB) *CrosswalkRepository {
	return &CrosswalkRepository{db: db, now: nowUTC}
}

type crosswalkRow struct {
	GameID        string    `db:"game_id"`
	BrefGameID    *string   `db:"bref_game_id"`
	Source        string    `db:"source"`
	SourceURL     string    `db:"source_url"`
	IngestedAtUTC time.Time `db:"ingested_at_utc"`
}

var crosswalkUpsert = qb.UpsertSpec{
	Table:        "game_id_crosswalk",
	ConflictCols: []string{"game_id"},
	UpdateCols:   []string{"bref_game_id"},
}

func (r *CrosswalkRepository) UpsertMany(ctx context.Context, rows []crosswalk.Row) (game.UpsertResult, error) {
	if len(rows) == 0 {
		return game.UpsertResult{}, nil
	}

	ingestedAt := r.now()
	models := make([]any, 0, len(rows))
	for _, row := range rows {
		models = append(models, crosswalkRow{
			GameID:        row.GameID,
			BrefGameID:    row.BrefGameID,
			Source:        statsSourceName,
			SourceURL:     "",
			IngestedAtUTC: ingestedAt,
		})
	}

	query, args, err := qb.UpsertModels(crosswalkUpsert, models)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "build crosswalk upsert")
	}

	var result game.UpsertResult
	err = runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err = execUpsert(ctx, tx, query, args)
		return err
	})
	return result, err
}
