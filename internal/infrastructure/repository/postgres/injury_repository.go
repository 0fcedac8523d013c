package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/domain/injury"
	qb "github.com/hooplake/hooplake/internal/platform/querybuilder"
)

type InjuryRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewInjuryRepository(db *sqlx.DB) *InjuryRepository {
	return &InjuryRepository{db: db, now: nowUTC}
}

type injuryRow struct {
	GameID        string    `db:"game_id"`
	TeamID        int64     `db:"team_id"`
	PlayerID      int64     `db:"player_id"`
	Status        string    `db:"status"`
	Source        string    `db:"source"`
	SourceURL     string    `db:"source_url"`
	IngestedAtUTC time.Time `db:"ingested_at_utc"`
}

var injuryUpsert = qb.UpsertSpec{
	Table:        "injury_status",
	ConflictCols: []string{"game_id", "team_id", "player_id"},
	UpdateCols:   []string{"status"},
}

func (r *InjuryRepository) UpsertMany(ctx context.Context, statuses []injury.Status) (game.UpsertResult, error) {
	if len(statuses) == 0 {
		return game.UpsertResult{}, nil
	}

	ingestedAt := r.now()
	models := make([]any, 0, len(statuses))
	for _, s := range statuses {
		models = append(models, injuryRow{
			GameID:        s.GameID,
			TeamID:        s.TeamID,
			PlayerID:      s.PlayerID,
			Status:        s.Status,
			Source:        statsSourceName,
			SourceURL:     statsEndpointURL("boxscoresummaryv2", s.GameID),
			IngestedAtUTC: ingestedAt,
		})
	}

	query, args, err := qb.UpsertModels(injuryUpsert, models)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "build injury upsert")
	}

	var result game.UpsertResult
	err = runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err = execUpsert(ctx, tx, query, args)
		return err
	})
	return result, err
}
