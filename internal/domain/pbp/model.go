package pbp

import (
	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/platform/validate"
)

// PeriodLengthSeconds is 720 for regulation periods and 300 for overtime.
func PeriodLengthSeconds(period int) float64 {
	if period <= 4 {
		return 720
	}
	return 300
}

// Event is one play-by-play row keyed by (game_id, event_idx).
type Event struct {
	GameID         string `validate:"required,nbagameid"`
	EventIdx       int64
	Period         int    `validate:"min=1,max=10"`
	Clock          string `validate:"required,nbaclock"`
	ClockSeconds   float64
	SecondsElapsed float64
	TeamID         *int64
	Player1ID      *int64
	Player2ID      *int64
	ActionType     *int64
	ActionSubtype  *int64
	Description    *string
}

func (e Event) Validate() error {
	if err := validate.Struct(e); err != nil {
		return crerr.Wrapf(err, "invalid pbp event %s/%d", e.GameID, e.EventIdx)
	}
	limit := PeriodLengthSeconds(e.Period)
	if e.ClockSeconds < 0 || e.ClockSeconds > limit {
		return crerr.Newf("pbp event %s/%d: clock_seconds %.3f outside [0, %.0f]",
			e.GameID, e.EventIdx, e.ClockSeconds, limit)
	}
	return nil
}
