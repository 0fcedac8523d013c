package lineup

import (
	"sort"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/platform/validate"
)

// Stint is a 5-player on-court interval keyed by
// (game_id, team_id, period, sorted player IDs).
type Stint struct {
	GameID        string `validate:"required,nbagameid"`
	TeamID        int64  `validate:"required"`
	Period        int    `validate:"min=1,max=10"`
	PlayerIDs     []int64
	SecondsPlayed float64
}

func (s Stint) Validate() error {
	if err := validate.Struct(s); err != nil {
		return crerr.Wrapf(err, "invalid lineup stint for game %s", s.GameID)
	}
	if err := validatePlayers(s.PlayerIDs); err != nil {
		return crerr.Wrapf(err, "lineup stint for game %s team %d", s.GameID, s.TeamID)
	}
	if s.SecondsPlayed < 0 {
		return crerr.Newf("lineup stint for game %s team %d: negative seconds_played %.3f",
			s.GameID, s.TeamID, s.SecondsPlayed)
	}
	return nil
}

// StartingLineup is the 5 starters for one team in one game.
type StartingLineup struct {
	GameID    string `validate:"required,nbagameid"`
	TeamID    int64  `validate:"required"`
	PlayerIDs []int64
}

func (s StartingLineup) Validate() error {
	if err := validate.Struct(s); err != nil {
		return crerr.Wrapf(err, "invalid starting lineup for game %s", s.GameID)
	}
	if err := validatePlayers(s.PlayerIDs); err != nil {
		return crerr.Wrapf(err, "starting lineup for game %s team %d", s.GameID, s.TeamID)
	}
	return nil
}

// NormalizePlayerIDs returns a sorted copy so equivalent lineups share one key.
func NormalizePlayerIDs(ids []int64) []int64 {
	out := append([]int64(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PlayerKey renders sorted player IDs as the canonical conflict-key string.
func PlayerKey(ids []int64) string {
	sorted := NormalizePlayerIDs(ids)
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, "-")
}

// ParsePlayerKey inverts PlayerKey. The second return is false for malformed
// keys.
func ParsePlayerKey(key string) ([]int64, bool) {
	parts := strings.Split(key, "-")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

func validatePlayers(ids []int64) error {
	if len(ids) != 5 {
		return crerr.Newf("expected 5 players, got %d", len(ids))
	}
	seen := make(map[int64]struct{}, 5)
	for _, id := range ids {
		if id <= 0 {
			return crerr.Newf("invalid player id %d", id)
		}
		if _, dup := seen[id]; dup {
			return crerr.Newf("duplicate player id %d", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
