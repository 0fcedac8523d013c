package injury

import (
	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/platform/validate"
)

const (
	StatusInactive = "INACTIVE"
	StatusOut      = "OUT"
)

// Status records a player's availability for one game, sourced from the
// boxscore inactive list.
type Status struct {
	GameID   string `validate:"required,nbagameid"`
	TeamID   int64  `validate:"required"`
	PlayerID int64  `validate:"required"`
	Status   string `validate:"required"`
}

func (s Status) Validate() error {
	if err := validate.Struct(s); err != nil {
		return crerr.Wrapf(err, "invalid injury status for game %s", s.GameID)
	}
	return nil
}
