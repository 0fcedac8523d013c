package outcome

import (
	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/platform/validate"
)

// Outcome is the final score and margin for one game.
type Outcome struct {
	GameID      string `validate:"required,nbagameid"`
	HomeScore   int
	AwayScore   int
	TotalPoints int
	HomeWin     bool
	Margin      int
}

// Derive builds an Outcome from final scores. Margin is home minus away.
func Derive(gameID string, homeScore, awayScore int) Outcome {
	return Outcome{
		GameID:      gameID,
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		TotalPoints: homeScore + awayScore,
		HomeWin:     homeScore > awayScore,
		Margin:      homeScore - awayScore,
	}
}

func (o Outcome) Validate() error {
	if err := validate.Struct(o); err != nil {
		return crerr.Wrapf(err, "invalid outcome for game %s", o.GameID)
	}
	if o.HomeScore < 0 || o.AwayScore < 0 {
		return crerr.Newf("outcome for game %s: negative score %d/%d", o.GameID, o.HomeScore, o.AwayScore)
	}
	return nil
}
