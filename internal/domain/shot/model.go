package shot

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/platform/validate"
)

// Event is one shot attempt keyed by (game_id, player_id, period, loc_x, loc_y).
type Event struct {
	GameID       string `validate:"required,nbagameid"`
	PlayerID     int64  `validate:"required"`
	TeamID       *int64
	Period       int `validate:"min=1,max=10"`
	ShotMadeFlag int
	LocX         int64
	LocY         int64
	EventNum     *int64
}

func (e Event) Validate() error {
	if err := validate.Struct(e); err != nil {
		return crerr.Wrapf(err, "invalid shot event for game %s", e.GameID)
	}
	if e.ShotMadeFlag != 0 && e.ShotMadeFlag != 1 {
		return crerr.Newf("shot event for game %s: shot_made_flag %d not in {0,1}", e.GameID, e.ShotMadeFlag)
	}
	return nil
}

// DedupeKey identifies a shot within a game. EventNum participates when
// present so two shots by the same player at the same spot in one period are
// not collapsed.
func (e Event) DedupeKey() string {
	if e.EventNum != nil {
		return fmt.Sprintf("%s|%d|%d|%d|%d|%d", e.GameID, e.PlayerID, e.Period, e.LocX, e.LocY, *e.EventNum)
	}
	return fmt.Sprintf("%s|%d|%d|%d|%d|-", e.GameID, e.PlayerID, e.Period, e.LocX, e.LocY)
}
