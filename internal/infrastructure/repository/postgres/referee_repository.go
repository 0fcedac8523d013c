package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/domain/referee"
	qb "github.com/hooplake/hooplake/internal/platform/querybuilder"
)

const gamebookSourceName = "official.nba.com"

type RefereeRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewRefereeRepository(db *sqlx.DB) *RefereeRepository {
	return &RefereeRepository{db: db, now: nowUTC}
}

type refAssignmentRow struct {
	GameID          string    `db:"game_id"`
	RefereeName     string    `db:"referee_name"`
	RefereeNameSlug string    `db:"referee_name_slug"`
	Role            string    `db:"role"`
	Source          string    `db:"source"`
	SourceURL       string    `db:"source_url"`
	IngestedAtUTC   time.Time `db:"ingested_at_utc"`
}

type refAlternateRow struct {
	GameID          string    `db:"game_id"`
	RefereeName     string    `db:"referee_name"`
	RefereeNameSlug string    `db:"referee_name_slug"`
	Source          string    `db:"source"`
	SourceURL       string    `db:"source_url"`
	IngestedAtUTC   time.Time `db:"ingested_at_utc"`
}

var (
	refAssignmentUpsert = qb.UpsertSpec{
		Table:        "ref_assignments",
		ConflictCols: []string{"game_id", "referee_name_slug"},
		UpdateCols:   []string{"referee_name", "role"},
	}
	refAlternateUpsert = qb.UpsertSpec{
		Table:        "ref_alternates",
		ConflictCols: []string{"game_id", "referee_name_slug"},
		UpdateCols:   []string{"referee_name"},
	}
)

func (r *RefereeRepository) UpsertAssignments(ctx context.Context, assignments []referee.Assignment) (game.UpsertResult, error) {
	if len(assignments) == 0 {
		return game.UpsertResult{}, nil
	}

	ingestedAt := r.now()
	models := make([]any, 0, len(assignments))
	for _, a := range assignments {
		models = append(models, refAssignmentRow{
			GameID:          a.GameID,
			RefereeName:     a.Name,
			RefereeNameSlug: a.NameSlug,
			Role:            a.Role,
			Source:          gamebookSourceName,
			SourceURL:       "",
			IngestedAtUTC:   ingestedAt,
		})
	}

	query, args, err := qb.UpsertModels(refAssignmentUpsert, models)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "build ref assignment upsert")
	}

	var result game.UpsertResult
	err = runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err = execUpsert(ctx, tx, query, args)
		return err
	})
	return result, err
}

func (r *RefereeRepository) UpsertAlternates(ctx context.Context, alternates []referee.Alternate) (game.UpsertResult, error) {
	if len(alternates) == 0 {
		return game.UpsertResult{}, nil
	}

	ingestedAt := r.now()
	models := make([]any, 0, len(alternates))
	for _, a := range alternates {
		models = append(models, refAlternateRow{
			GameID:          a.GameID,
			RefereeName:     a.Name,
			RefereeNameSlug: a.NameSlug,
			Source:          gamebookSourceName,
			SourceURL:       "",
			IngestedAtUTC:   ingestedAt,
		})
	}

	query, args, err := qb.UpsertModels(refAlternateUpsert, models)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "build ref alternate upsert")
	}

	var result game.UpsertResult
	err = runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err = execUpsert(ctx, tx, query, args)
		return err
	})
	return result, err
}
