package crosswalk

import (
	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/platform/validate"
)

// Row maps the stats-API game ID to IDs used by other providers. BrefGameID
// must be unique across rows when present.
type Row struct {
	GameID     string `validate:"required,nbagameid"`
	BrefGameID *string
}

func (r Row) Validate() error {
	if err := validate.Struct(r); err != nil {
		return crerr.Wrapf(err, "invalid crosswalk row for game %s", r.GameID)
	}
	if r.BrefGameID != nil && *r.BrefGameID == "" {
		return crerr.Newf("crosswalk row for game %s: empty bref_game_id", r.GameID)
	}
	return nil
}
