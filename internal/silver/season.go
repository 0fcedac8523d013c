package silver

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/platform/validate"
)

// DeriveSeasonFromGameID reads the two-digit season year at positions 3-4 of
// a well-formed game ID: "0022300123" starts in 2023, so "2023-24".
func DeriveSeasonFromGameID(gameID string) (string, bool) {
	if !validate.GameID(gameID) {
		return "", false
	}
	yy, err := strconv.Atoi(gameID[3:5])
	if err != nil {
		return "", false
	}
	return formatSeason(2000 + yy), true
}

// DeriveSeasonFromDate maps a YYYY-MM-DD date to its season: October or later
// starts a new season, earlier months belong to the previous year's season.
func DeriveSeasonFromDate(date string) (string, bool) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", false
	}
	start := parsed.Year()
	if parsed.Month() < time.October {
		start--
	}
	return formatSeason(start), true
}

// DeriveSeason resolves a season by precedence: explicit value when
// well-formed, then the game ID, then the game date, then UNKNOWN.
func DeriveSeason(explicit, gameID, gameDate string) string {
	if validate.Season(explicit) {
		return explicit
	}
	if season, ok := DeriveSeasonFromGameID(gameID); ok {
		return season
	}
	if season, ok := DeriveSeasonFromDate(gameDate); ok {
		return season
	}
	return game.SeasonUnknown
}

func formatSeason(startYear int) string {
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}
