package postgres

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/domain/pbp"
	qb "github.com/hooplake/hooplake/internal/platform/querybuilder"
)

// pbpBatchSize bounds the number of rows per multi-row upsert statement.
const pbpBatchSize = 1000

type PbpRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewPbpRepository(db *sqlx.DB) *PbpRepository {
	return &PbpRepository{db: db, now: nowUTC}
}

type pbpRow struct {
	GameID         string    `db:"game_id"`
	EventIdx       int64     `db:"event_idx"`
	Period         int       `db:"period"`
	Clock          string    `db:"clock"`
	ClockSeconds   float64   `db:"clock_seconds"`
	SecondsElapsed float64   `db:"seconds_elapsed"`
	TeamID         *int64    `db:"team_id"`
	Player1ID      *int64    `db:"player1_id"`
	Player2ID      *int64    `db:"player2_id"`
	ActionType     *int64    `db:"action_type"`
	ActionSubtype  *int64    `db:"action_subtype"`
	Description    *string   `db:"description"`
	Source         string    `db:"source"`
	SourceURL      string    `db:"source_url"`
	IngestedAtUTC  time.Time `db:"ingested_at_utc"`
}

var pbpUpsert = qb.UpsertSpec{
	Table:        "pbp_events",
	ConflictCols: []string{"game_id", "event_idx"},
	UpdateCols: []string{
		"period", "clock", "clock_seconds", "seconds_elapsed",
		"team_id", "player1_id", "player2_id", "action_type", "action_subtype", "description",
	},
}

// UpsertMany upserts events in ascending event_idx order, in batches of 1000
// inside one transaction.
func (r *PbpRepository) UpsertMany(ctx context.Context, events []pbp.Event) (game.UpsertResult, error) {
	if len(events) == 0 {
		return game.UpsertResult{}, nil
	}

	ingestedAt := r.now()
	var total game.UpsertResult
	err := runInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for start := 0; start < len(events); start += pbpBatchSize {
			end := start + pbpBatchSize
			if end > len(events) {
				end = len(events)
			}
			batch := events[start:end]

			models := make([]any, 0, len(batch))
			for _, e := range batch {
				models = append(models, pbpRow{
					GameID:         e.GameID,
					EventIdx:       e.EventIdx,
					Period:         e.Period,
					Clock:          e.Clock,
					ClockSeconds:   e.ClockSeconds,
					SecondsElapsed: e.SecondsElapsed,
					TeamID:         e.TeamID,
					Player1ID:      e.Player1ID,
					Player2ID:      e.Player2ID,
					ActionType:     e.ActionType,
					ActionSubtype:  e.ActionSubtype,
					Description:    e.Description,
					Source:         statsSourceName,
					SourceURL:      statsEndpointURL("playbyplayv2", e.GameID),
					IngestedAtUTC:  ingestedAt,
				})
			}

			query, args, err := qb.UpsertModels(pbpUpsert, models)
			if err != nil {
				return crerr.Wrap(err, "build pbp upsert")
			}
			result, err := execUpsert(ctx, tx, query, args)
			if err != nil {
				return err
			}
			total = add(total, result)
		}
		return nil
	})
	return total, err
}
