package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/domain/shot"
	qb "github.com/hooplake/hooplake/internal/platform/querybuilder"
)

type ShotRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewShotRepository(db *sqlx.DB) *ShotRepository {
	return &ShotRepository{db: db, now: nowUTC}
}

type shotRow struct {
	GameID        string    `db:"game_id"`
	PlayerID      int64     `db:"player_id"`
	TeamID        *int64    `db:"team_id"`
	Period        int       `db:"period"`
	ShotMadeFlag  int       `db:"shot_made_flag"`
	LocX          int64     `db:"loc_x"`
	LocY          int64     `db:"loc_y"`
	EventNum      *int64    `db:"event_num"`
	Source        string    `db:"source"`
	SourceURL     string    `db:"source_url"`
	IngestedAtUTC time.Time `db:"ingested_at_utc"`
}

var shotUpsert = qb.UpsertSpec{
	Table:        "shot_events",
	ConflictCols: []string{"game_id", "player_id", "period", "loc_x", "loc_y"},
	UpdateCols:   []string{"team_id", "shot_made_flag", "event_num"},
}

// shotConflictKey mirrors shotUpsert.ConflictCols. Two events sharing it
// would make one INSERT ... ON CONFLICT statement touch the same row twice,
// which Postgres rejects, so UpsertMany collapses them first.
type shotConflictKey struct {
	GameID   string
	PlayerID int64
	Period   int
	LocX     int64
	LocY     int64
}

// collapseShotEvents keeps the last event per conflict key, preserving the
// order of first appearance.
func collapseShotEvents(events []shot.Event) []shot.Event {
	out := make([]shot.Event, 0, len(events))
	byKey := make(map[shotConflictKey]int, len(events))
	for _, e := range events {
		key := shotConflictKey{GameID: e.GameID, PlayerID: e.PlayerID, Period: e.Period, LocX: e.LocX, LocY: e.LocY}
		if at, dup := byKey[key]; dup {
			out[at] = e
			continue
		}
		byKey[key] = len(out)
		out = append(out, e)
	}
	return out
}

func (r *ShotRepository) UpsertMany(ctx context.Context, events []shot.Event) (game.UpsertResult, error) {
	if len(events) == 0 {
		return game.UpsertResult{}, nil
	}

	events = collapseShotEvents(events)
	ingestedAt := r.now()
	models := make([]any, 0, len(events))
	for _, e := range events {
		models = append(models, shotRow{
			GameID:        e.GameID,
			PlayerID:      e.PlayerID,
			TeamID:        e.TeamID,
			Period:        e.Period,
			ShotMadeFlag:  e.ShotMadeFlag,
			LocX:          e.LocX,
			LocY:          e.LocY,
			EventNum:      e.EventNum,
			Source:        statsSourceName,
			SourceURL:     statsEndpointURL("shotchartdetail", e.GameID),
			IngestedAtUTC: ingestedAt,
		})
	}

	query, args, err := qb.UpsertModels(shotUpsert, models)
	if err != nil {
		return game.UpsertResult{}, crerr.Wrap(err, "build shot upsert")
	}

	var result game.UpsertResult
	err = runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err = execUpsert(ctx, tx, query, args)
		return err
	})
	return result, err
}
