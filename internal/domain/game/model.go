package game

import (
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/platform/validate"
)

const (
	StatusScheduled   = "SCHEDULED"
	StatusLive        = "LIVE"
	StatusFinal       = "FINAL"
	StatusPostponed   = "POSTPONED"
	StatusCancelled   = "CANCELLED"
	StatusSuspended   = "SUSPENDED"
	StatusRescheduled = "RESCHEDULED"
)

// SeasonUnknown is stored when no derivation source yields a season.
const SeasonUnknown = "UNKNOWN"

// Game is one upstream game keyed by its zero-padded 10-char ID.
type Game struct {
	GameID     string `validate:"required,nbagameid"`
	Season     string `validate:"required"`
	GameDate   string `validate:"required,datetime=2006-01-02"`
	HomeTeamID int64  `validate:"required"`
	AwayTeamID int64  `validate:"required"`
	Status     string `validate:"required"`
}

func (g Game) Validate() error {
	if err := validate.Struct(g); err != nil {
		return crerr.Wrapf(err, "invalid game %s", g.GameID)
	}
	if g.HomeTeamID == g.AwayTeamID {
		return crerr.Newf("game %s: home and away team are both %d", g.GameID, g.HomeTeamID)
	}
	if g.Season != SeasonUnknown && !validate.Season(g.Season) {
		return crerr.Newf("game %s: invalid season %q", g.GameID, g.Season)
	}
	return nil
}

// NormalizeStatus maps upstream status spellings onto the canonical set.
// Unknown values default to SCHEDULED, matching the upstream scoreboard
// behavior for games that have not started.
func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	switch status {
	case "", StatusScheduled, "PREGAME", "PRE-GAME", "NOT STARTED":
		return StatusScheduled
	case StatusFinal, "F", "FINAL/OT", "COMPLETE", "COMPLETED", "CLOSED":
		return StatusFinal
	case StatusLive, "IN PROGRESS", "IN_PROGRESS", "HALFTIME", "HALF", "END OF PERIOD":
		return StatusLive
	case StatusPostponed, "PPD":
		return StatusPostponed
	case StatusCancelled, "CANCELED":
		return StatusCancelled
	case StatusSuspended:
		return StatusSuspended
	case StatusRescheduled:
		return StatusRescheduled
	default:
		return StatusScheduled
	}
}

// SeasonPhase returns the season phase encoded in the game ID prefix, or ""
// when the ID is malformed.
func SeasonPhase(gameID string) string {
	if !validate.GameID(gameID) {
		return ""
	}
	switch gameID[:3] {
	case "001":
		return "PRESEASON"
	case "002":
		return "REGULAR"
	case "003":
		return "PLAYOFFS"
	case "004":
		return "PLAYIN"
	default:
		return ""
	}
}
