package silver

import (
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/domain/injury"
	"github.com/hooplake/hooplake/internal/domain/lineup"
	"github.com/hooplake/hooplake/internal/domain/outcome"
	"github.com/hooplake/hooplake/internal/domain/pbp"
	"github.com/hooplake/hooplake/internal/domain/referee"
	"github.com/hooplake/hooplake/internal/domain/shot"
	"github.com/hooplake/hooplake/internal/platform/validate"
)

// TransformGame turns extracted metadata into a validated Game. Team IDs fall
// back to tricode resolution when the summary did not carry them.
func TransformGame(meta GameMeta) (game.Game, error) {
	if !validate.GameID(meta.GameID) {
		return game.Game{}, crerr.Newf("malformed game id %q", meta.GameID)
	}

	homeID := meta.HomeTeamID
	awayID := meta.AwayTeamID
	var err error
	if homeID == 0 {
		homeID, err = ResolveTeamID(meta.HomeTeamTricode, meta.GameID)
		if err != nil {
			return game.Game{}, err
		}
	}
	if awayID == 0 {
		awayID, err = ResolveTeamID(meta.AwayTeamTricode, meta.GameID)
		if err != nil {
			return game.Game{}, err
		}
	}

	gameDate := meta.GameDateLocal
	if gameDate == "" {
		gameDate = meta.GameDateUTC
	}
	if gameDate == "" {
		gameDate = time.Now().UTC().Format("2006-01-02")
	}

	out := game.Game{
		GameID:     meta.GameID,
		Season:     DeriveSeason(meta.Season, meta.GameID, gameDate),
		GameDate:   gameDate,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		Status:     game.NormalizeStatus(meta.StatusText),
	}
	if err := out.Validate(); err != nil {
		return game.Game{}, err
	}
	return out, nil
}

// TransformPbp converts raw play-by-play rows to validated events. Rows that
// fail coercion or validation are skipped; the skip count is returned so the
// caller can log it.
func TransformPbp(gameID string, rows []Row) ([]pbp.Event, int) {
	events := make([]pbp.Event, 0, len(rows))
	byIdx := make(map[int64]int, len(rows))
	skipped := 0
	for _, row := range rows {
		event, ok := transformPbpRow(gameID, row)
		if !ok {
			skipped++
			continue
		}
		// Upstream occasionally repeats an EVENTNUM; the later row wins so
		// the batch never carries one (game, event index) pair twice.
		if at, dup := byIdx[event.EventIdx]; dup {
			events[at] = event
			continue
		}
		byIdx[event.EventIdx] = len(events)
		events = append(events, event)
	}
	return events, skipped
}

func transformPbpRow(gameID string, row Row) (pbp.Event, bool) {
	eventIdx, ok := row.Int64("EVENTNUM")
	if !ok {
		return pbp.Event{}, false
	}
	period64, ok := row.Int64("PERIOD")
	if !ok {
		return pbp.Event{}, false
	}
	clock := row.String("PCTIMESTRING")
	if clock == "" {
		clock = row.String("CLOCK")
	}
	clockSeconds, ok := ParseClockSeconds(clock)
	if !ok {
		return pbp.Event{}, false
	}

	period := int(period64)
	elapsed := pbp.PeriodLengthSeconds(period) - clockSeconds
	if elapsed < 0 {
		// Data-consistency safety for clocks that exceed the period length.
		elapsed = -elapsed
	}

	description := row.OptionalString("HOMEDESCRIPTION")
	if description == nil {
		description = row.OptionalString("VISITORDESCRIPTION")
	}
	if description == nil {
		description = row.OptionalString("NEUTRALDESCRIPTION")
	}

	event := pbp.Event{
		GameID:         gameID,
		EventIdx:       eventIdx,
		Period:         period,
		Clock:          clock,
		ClockSeconds:   clockSeconds,
		SecondsElapsed: elapsed,
		TeamID:         row.OptionalInt64("PLAYER1_TEAM_ID"),
		Player1ID:      row.OptionalInt64("PLAYER1_ID"),
		Player2ID:      row.OptionalInt64("PLAYER2_ID"),
		ActionType:     row.OptionalInt64("EVENTMSGTYPE"),
		ActionSubtype:  row.OptionalInt64("EVENTMSGACTIONTYPE"),
		Description:    description,
	}
	if err := event.Validate(); err != nil {
		return pbp.Event{}, false
	}
	return event, true
}

// TransformShots converts raw shot rows to validated, deduplicated events.
func TransformShots(gameID string, rows []Row) ([]shot.Event, int) {
	events := make([]shot.Event, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	skipped := 0
	for _, row := range rows {
		event, ok := transformShotRow(gameID, row)
		if !ok {
			skipped++
			continue
		}
		key := event.DedupeKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		events = append(events, event)
	}
	return events, skipped
}

func transformShotRow(gameID string, row Row) (shot.Event, bool) {
	playerID, ok := row.Int64("PLAYER_ID")
	if !ok {
		return shot.Event{}, false
	}
	period64, ok := row.Int64("PERIOD")
	if !ok {
		return shot.Event{}, false
	}
	locX, ok := row.Int64("LOC_X")
	if !ok {
		return shot.Event{}, false
	}
	locY, ok := row.Int64("LOC_Y")
	if !ok {
		return shot.Event{}, false
	}
	made, ok := row.Int64("SHOT_MADE_FLAG")
	if !ok {
		return shot.Event{}, false
	}

	event := shot.Event{
		GameID:       gameID,
		PlayerID:     playerID,
		TeamID:       row.OptionalInt64("TEAM_ID"),
		Period:       int(period64),
		ShotMadeFlag: int(made),
		LocX:         locX,
		LocY:         locY,
		EventNum:     row.OptionalInt64("GAME_EVENT_ID"),
	}
	if err := event.Validate(); err != nil {
		return shot.Event{}, false
	}
	return event, true
}

// TransformStartingLineups builds one StartingLineup per team from the
// traditional boxscore starters.
func TransformStartingLineups(gameID string, startersByTeam map[int64][]Row) ([]lineup.StartingLineup, error) {
	out := make([]lineup.StartingLineup, 0, len(startersByTeam))
	for teamID, rows := range startersByTeam {
		ids := make([]int64, 0, len(rows))
		for _, row := range rows {
			if id, ok := row.Int64("PLAYER_ID"); ok {
				ids = append(ids, id)
			}
		}
		sl := lineup.StartingLineup{
			GameID:    gameID,
			TeamID:    teamID,
			PlayerIDs: lineup.NormalizePlayerIDs(ids),
		}
		if err := sl.Validate(); err != nil {
			return nil, err
		}
		out = append(out, sl)
	}
	return out, nil
}

// Positional role mapping for the boxscore crew listing, which carries no
// explicit roles. The first listed official is the crew chief.
var officialRolesByPosition = []string{
	referee.RoleCrewChief,
	referee.RoleReferee,
	referee.RoleUmpire,
}

// TransformOfficials maps the summary's Officials rows to assignments.
func TransformOfficials(gameID string, rows []Row) ([]referee.Assignment, error) {
	out := make([]referee.Assignment, 0, len(rows))
	for i, row := range rows {
		name := joinName(row.String("FIRST_NAME"), row.String("LAST_NAME"))
		if name == "" {
			continue
		}
		role := referee.RoleOfficial
		if i < len(officialRolesByPosition) {
			role = officialRolesByPosition[i]
		}
		assignment := referee.Assignment{
			GameID:   gameID,
			Name:     name,
			NameSlug: referee.Slug(name),
			Role:     role,
		}
		if err := assignment.Validate(); err != nil {
			return nil, err
		}
		out = append(out, assignment)
	}
	if err := referee.ValidateCrew(out); err != nil {
		return nil, crerr.Wrapf(err, "game %s", gameID)
	}
	return out, nil
}

// TransformInactive maps the summary's inactive-player rows to injury rows.
func TransformInactive(gameID string, rows []Row) []injury.Status {
	out := make([]injury.Status, 0, len(rows))
	for _, row := range rows {
		playerID, ok := row.Int64("PLAYER_ID")
		if !ok {
			continue
		}
		teamID, ok := row.Int64("TEAM_ID")
		if !ok {
			continue
		}
		status := injury.Status{
			GameID:   gameID,
			TeamID:   teamID,
			PlayerID: playerID,
			Status:   injury.StatusInactive,
		}
		if err := status.Validate(); err != nil {
			continue
		}
		out = append(out, status)
	}
	return out
}

// TransformOutcome derives the final-score outcome from line-score rows. The
// second return is false when the game has no final scores yet.
func TransformOutcome(g game.Game, lineScore []Row) (outcome.Outcome, bool) {
	if g.Status != game.StatusFinal {
		return outcome.Outcome{}, false
	}
	var homePts, awayPts int64
	var haveHome, haveAway bool
	for _, row := range lineScore {
		teamID, ok := row.Int64("TEAM_ID")
		if !ok {
			continue
		}
		pts, ok := row.Int64("PTS")
		if !ok {
			continue
		}
		switch teamID {
		case g.HomeTeamID:
			homePts, haveHome = pts, true
		case g.AwayTeamID:
			awayPts, haveAway = pts, true
		}
	}
	if !haveHome || !haveAway {
		return outcome.Outcome{}, false
	}
	return outcome.Derive(g.GameID, int(homePts), int(awayPts)), true
}

func joinName(first, last string) string {
	switch {
	case first == "" && last == "":
		return ""
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
