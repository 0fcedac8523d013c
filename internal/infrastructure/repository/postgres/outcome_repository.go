package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/domain/outcome"
	qb "github.com/hooplake/hooplake/internal/platform/querybuilder"
)

type OutcomeRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewOutcomeRepository(db *sqlx.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db, now: nowUTC}
}

type outcomeRow struct {
	GameID        string    `db:"game_id"`
	HomeScore     int       `db:"home_score"`
	AwayScore     int       `db:"away_score"`
	TotalPoints   int       `db:"total_points"`
	HomeWin       bool      `db:"home_win"`
	Margin        int       `db:"margin"`
	Source        string    `db:"source"`
	SourceURL     string    `db:"source_url"`
	IngestedAtUTC time.Time `db:"ingested_at_utc"`
}

var outcomeUpsert = qb.UpsertSpec{
	Table:        "outcomes",
	ConflictCols: []string{"game_id"},
	UpdateCols:   []string{"home_score", "away_score", "total_points", "home_win", "margin"},
}

func (r *OutcomeRepository) UpsertMany(ctx context.Context, outcomes []outcome.Outcome) (game.UpsertResult, error) {
	if len(outcomes) == 0 {
		return game.UpsertResult{}, nil
	}

	ingestedAt := r.now()
	models := make([]any, 0, len(outcomes))
	for _, o := range outcomes {
		models = append(models, outcomeRow{
			GameID:        o.GameID,
			HomeScore:     o.HomeScore,
			AwayScore:     o.AwayScore,
			TotalPoints:   o.TotalPoints,
			HomeWin:       o.HomeWin,
			Margin:        o.Margin,
			Source:        statsSourceName,
			SourceURL:     statsEndpointURL("boxscoresummaryv2", o.GameID),
			IngestedAtUTC: ingestedAt,
		})
	}

	query, args, err := qb.UpsertModels(outcomeUpsert, models)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "build outcome upsert")
	}

	var result game.UpsertResult
	err = runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err = execUpsert(ctx, tx, query, args)
		return err
	})
	return result, err
}
