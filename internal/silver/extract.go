package silver

import (
	"strings"

	crerr "github.com/cockroachdb/errors"
)

// Upstream result-set names, part of the versioned extractor contract.
const (
	setGameSummary     = "GameSummary"
	setLineScore       = "LineScore"
	setPlayByPlay      = "PlayByPlay"
	setTeamStats       = "TeamStats"
	setPlayerStats     = "PlayerStats"
	setShotChartDetail = "Shot_Chart_Detail"
	setOfficials       = "Officials"
	setInactivePlayers = "InactivePlayers"
	setStartingLineup  = "StartingLineup"
)

// GameMeta is the neutral game record produced by extraction, before
// transformation into a typed Game.
type GameMeta struct {
	GameID          string
	Season          string
	GameDateLocal   string
	GameDateUTC     string
	HomeTeamID      int64
	AwayTeamID      int64
	HomeTeamTricode string
	AwayTeamTricode string
	StatusText      string
}

// ExtractGameMeta builds game metadata from the boxscore summary, falling
// back to the traditional boxscore parameters for the game ID. A game ID that
// cannot be resolved from any source is a hard error.
func ExtractGameMeta(summary, boxscore *Envelope) (GameMeta, error) {
	meta := GameMeta{}

	meta.GameID = summary.ParameterString("GameID")
	if meta.GameID == "" {
		meta.GameID = boxscore.ParameterString("GameID")
	}

	rows := summary.ResultSetByName(setGameSummary).Rows()
	if len(rows) > 0 {
		row := rows[0]
		if meta.GameID == "" {
			meta.GameID = row.String("GAME_ID")
		}
		meta.Season = seasonString(row)
		meta.GameDateLocal = datePart(row.String("GAME_DATE"))
		meta.GameDateUTC = datePart(row.String("GAME_DATE_EST"))
		if id, ok := row.Int64("HOME_TEAM_ID"); ok {
			meta.HomeTeamID = id
		}
		if id, ok := row.Int64("VISITOR_TEAM_ID"); ok {
			meta.AwayTeamID = id
		}
		meta.StatusText = row.String("GAME_STATUS_TEXT")
	}

	if meta.GameID == "" {
		return GameMeta{}, crerr.New("game id not found in summary parameters, boxscore parameters or GameSummary")
	}

	fillTricodes(&meta, summary.ResultSetByName(setLineScore).Rows())
	return meta, nil
}

func seasonString(row Row) string {
	if s := row.String("SEASON"); s != "" {
		return s
	}
	// SEASON arrives as a bare start year on some endpoints.
	if y, ok := row.Int64("SEASON"); ok && y >= 1946 {
		return formatSeason(int(y))
	}
	return ""
}

func fillTricodes(meta *GameMeta, lineScore []Row) {
	for _, row := range lineScore {
		id, ok := row.Int64("TEAM_ID")
		if !ok {
			continue
		}
		tricode := row.String("TEAM_ABBREVIATION")
		switch id {
		case meta.HomeTeamID:
			meta.HomeTeamTricode = tricode
		case meta.AwayTeamID:
			meta.AwayTeamTricode = tricode
		}
	}
}

// ExtractPbpRows returns the play-by-play rows keyed by header.
func ExtractPbpRows(env *Envelope) []Row {
	return env.ResultSetByName(setPlayByPlay).Rows()
}

// ExtractShotRows returns the shot-chart rows keyed by header.
func ExtractShotRows(env *Envelope) []Row {
	return env.ResultSetByName(setShotChartDetail).Rows()
}

// ExtractOfficialRows returns the officiating crew from the boxscore summary.
func ExtractOfficialRows(summary *Envelope) []Row {
	return summary.ResultSetByName(setOfficials).Rows()
}

// ExtractInactiveRows returns the inactive-player list from the summary.
func ExtractInactiveRows(summary *Envelope) []Row {
	return summary.ResultSetByName(setInactivePlayers).Rows()
}

// ExtractLineScoreRows returns per-team line scores from the summary.
func ExtractLineScoreRows(summary *Envelope) []Row {
	return summary.ResultSetByName(setLineScore).Rows()
}

// ExtractTeamIDs reads the two team IDs for a game from the summary, used to
// scope the shot-chart fallback.
func ExtractTeamIDs(summary *Envelope) []int64 {
	rows := summary.ResultSetByName(setGameSummary).Rows()
	if len(rows) == 0 {
		return nil
	}
	var out []int64
	if id, ok := rows[0].Int64("HOME_TEAM_ID"); ok {
		out = append(out, id)
	}
	if id, ok := rows[0].Int64("VISITOR_TEAM_ID"); ok {
		out = append(out, id)
	}
	return out
}

// StarterRows partitions the traditional boxscore player rows into starters
// per team. A starter is any player with a non-empty START_POSITION.
func StarterRows(boxscore *Envelope) map[int64][]Row {
	rows := boxscore.ResultSetByName(setPlayerStats).Rows()
	out := make(map[int64][]Row)
	for _, row := range rows {
		if strings.TrimSpace(row.String("START_POSITION")) == "" {
			continue
		}
		teamID, ok := row.Int64("TEAM_ID")
		if !ok {
			continue
		}
		out[teamID] = append(out[teamID], row)
	}
	return out
}

func datePart(v string) string {
	v = strings.TrimSpace(v)
	if idx := strings.IndexByte(v, 'T'); idx > 0 {
		return v[:idx]
	}
	if len(v) > 10 && v[10] == ' ' {
		return v[:10]
	}
	return v
}
