package referee

import (
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/platform/validate"
)

const (
	RoleCrewChief = "CREW_CHIEF"
	RoleReferee   = "REFEREE"
	RoleUmpire    = "UMPIRE"
	RoleOfficial  = "OFFICIAL"
)

// Assignment is one officiating crew member for a game, keyed by
// (game_id, referee_name_slug).
type Assignment struct {
	GameID   string `validate:"required,nbagameid"`
	Name     string `validate:"required"`
	NameSlug string `validate:"required"`
	Role     string `validate:"required,oneof=CREW_CHIEF REFEREE UMPIRE OFFICIAL"`
}

func (a Assignment) Validate() error {
	if err := validate.Struct(a); err != nil {
		return crerr.Wrapf(err, "invalid referee assignment for game %s", a.GameID)
	}
	return nil
}

// Alternate is a listed alternate official for a game.
type Alternate struct {
	GameID   string `validate:"required,nbagameid"`
	Name     string `validate:"required"`
	NameSlug string `validate:"required"`
}

func (a Alternate) Validate() error {
	if err := validate.Struct(a); err != nil {
		return crerr.Wrapf(err, "invalid referee alternate for game %s", a.GameID)
	}
	return nil
}

// Slug normalizes an official's printed name into a stable key.
func Slug(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := true
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ValidateCrew enforces at most one crew chief per game.
func ValidateCrew(assignments []Assignment) error {
	chiefs := 0
	for _, a := range assignments {
		if a.Role == RoleCrewChief {
			chiefs++
		}
	}
	if chiefs > 1 {
		return crerr.Newf("crew has %d crew chiefs, expected at most one", chiefs)
	}
	return nil
}
