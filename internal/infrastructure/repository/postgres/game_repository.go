package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/hooplake/hooplake/internal/domain/game"
	qb "github.com/hooplake/hooplake/internal/platform/querybuilder"
)

const statsSourceName = "stats.nba.com"

// GameRepository persists games with diff-aware idempotent upserts.
type GameRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db, now: nowUTC}
}

type gameRow struct {
	GameID        string    `db:"game_id"`
	Season        string    `db:"season"`
	GameDate      string    `db:"game_date"`
	HomeTeamID    int64     `db:"home_team_id"`
	AwayTeamID    int64     `db:"away_team_id"`
	Status        string    `db:"status"`
	Source        string    `db:"source"`
	SourceURL     string    `db:"source_url"`
	IngestedAtUTC time.Time `db:"ingested_at_utc"`
}

var gameUpsert = qb.UpsertSpec{
	Table:        "games",
	ConflictCols: []string{"game_id"},
	// Provenance columns are insert-only so unchanged re-ingests stay no-ops.
	UpdateCols: []string{"season", "game_date", "home_team_id", "away_team_id", "status"},
}

func (r *GameRepository) UpsertMany(ctx context.Context, games []game.Game) (game.UpsertResult, error) {
	if len(games) == 0 {
		return game.UpsertResult{}, nil
	}

	models := make([]any, 0, len(games))
	ingestedAt := r.now()
	for _, g := range games {
		models = append(models, gameRow{
			GameID:        g.GameID,
			Season:        g.Season,
			GameDate:      g.GameDate,
			HomeTeamID:    g.HomeTeamID,
			AwayTeamID:    g.AwayTeamID,
			Status:        g.Status,
			Source:        statsSourceName,
			SourceURL:     statsEndpointURL("boxscoresummaryv2", g.GameID),
			IngestedAtUTC: ingestedAt,
		})
	}

	query, args, err := qb.UpsertModels(gameUpsert, models)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "build game upsert")
	}

	var result game.UpsertResult
	err = runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err = execUpsert(ctx, tx, query, args)
		return err
	})
	return result, err
}

func (r *GameRepository) ExistingGameIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	query, args, err := qb.Select("game_id").From("games").Where(qb.In("game_id", values)).ToSQL()
	if err != nil {
		return nil, crerr.Wrap(err, "build existing game ids query")
	}

	var found []string
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, crerr.Wrap(err, "query existing game ids")
	}
	for _, id := range found {
		out[id] = struct{}{}
	}
	return out, nil
}

func statsEndpointURL(endpoint, gameID string) string {
	return "https://stats.nba.com/stats/" + endpoint + "?GameID=" + gameID
}
