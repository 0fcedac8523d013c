package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/domain/lineup"
	qb "github.com/hooplake/hooplake/internal/platform/querybuilder"
)

type LineupRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewLineupRepository(db *sqlx.DB) *LineupRepository {
	return &LineupRepository{db: db, now: nowUTC}
}

type stintRow struct {
	GameID          string    `db:"game_id"`
	TeamID          int64     `db:"team_id"`
	Period          int       `db:"period"`
	LineupPlayerIDs string    `db:"lineup_player_ids"`
	SecondsPlayed   float64   `db:"seconds_played"`
	Source          string    `db:"source"`
	SourceURL       string    `db:"source_url"`
	IngestedAtUTC   time.Time `db:"ingested_at_utc"`
}

type startingLineupRow struct {
	GameID          string    `db:"game_id"`
	TeamID          int64     `db:"team_id"`
	LineupPlayerIDs string    `db:"lineup_player_ids"`
	Source          string    `db:"source"`
	SourceURL       string    `db:"source_url"`
	IngestedAtUTC   time.Time `db:"ingested_at_utc"`
}

var (
	stintUpsert = qb.UpsertSpec{
		Table:        "lineup_stints",
		ConflictCols: []string{"game_id", "team_id", "period", "lineup_player_ids"},
		UpdateCols:   []string{"seconds_played"},
	}
	startingLineupUpsert = qb.UpsertSpec{
		Table:        "starting_lineups",
		ConflictCols: []string{"game_id", "team_id"},
		UpdateCols:   []string{"lineup_player_ids"},
	}
)

func (r *LineupRepository) UpsertStints(ctx context.Context, stints []lineup.Stint) (game.UpsertResult, error) {
	if len(stints) == 0 {
		return game.UpsertResult{}, nil
	}

	ingestedAt := r.now()
	models := make([]any, 0, len(stints))
	for _, s := range stints {
		models = append(models, stintRow{
			GameID:          s.GameID,
			TeamID:          s.TeamID,
			Period:          s.Period,
			LineupPlayerIDs: lineup.PlayerKey(s.PlayerIDs),
			SecondsPlayed:   s.SecondsPlayed,
			Source:          statsSourceName,
			SourceURL:       statsEndpointURL("playbyplayv2", s.GameID),
			IngestedAtUTC:   ingestedAt,
		})
	}

	query, args, err := qb.UpsertModels(stintUpsert, models)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "build stint upsert")
	}

	var result game.UpsertResult
	err = runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err = execUpsert(ctx, tx, query, args)
		return err
	})
	return result, err
}

func (r *LineupRepository) UpsertStartingLineups(ctx context.Context, lineups []lineup.StartingLineup) (game.UpsertResult, error) {
	if len(lineups) == 0 {
		return game.UpsertResult{}, nil
	}

	ingestedAt := r.now()
	models := make([]any, 0, len(lineups))
	for _, sl := range lineups {
		models = append(models, startingLineupRow{
			GameID:          sl.GameID,
			TeamID:          sl.TeamID,
			LineupPlayerIDs: lineup.PlayerKey(sl.PlayerIDs),
			Source:          statsSourceName,
			SourceURL:       statsEndpointURL("boxscoretraditionalv2", sl.GameID),
			IngestedAtUTC:   ingestedAt,
		})
	}

	query, args, err := qb.UpsertModels(startingLineupUpsert, models)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "build starting lineup upsert")
	}

	var result game.UpsertResult
	err = runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err = execUpsert(ctx, tx, query, args)
		return err
	})
	return result, err
}
