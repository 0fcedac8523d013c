package silver

import (
	"strings"
	"testing"

	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/domain/pbp"
	"github.com/hooplake/hooplake/internal/domain/referee"
)

func TestTransformGame(t *testing.T) {
	meta := GameMeta{
		GameID:        "0022300123",
		Season:        "",
		GameDateLocal: "2024-01-15",
		HomeTeamID:    1610612747,
		AwayTeamID:    1610612738,
		StatusText:    "Final",
	}
	got, err := TransformGame(meta)
	if err != nil {
		t.Fatalf("TransformGame: %v", err)
	}
	if got.Season != "2023-24" {
		t.Errorf("season = %q, want 2023-24", got.Season)
	}
	if got.Status != game.StatusFinal {
		t.Errorf("status = %q, want FINAL", got.Status)
	}
	if got.GameID != "0022300123" {
		t.Errorf("game id altered: %q", got.GameID)
	}
}

func TestTransformGame_TricodeFallback(t *testing.T) {
	meta := GameMeta{
		GameID:          "0022300123",
		GameDateLocal:   "2024-01-15",
		HomeTeamTricode: "PHO",
		AwayTeamTricode: "BRK",
		StatusText:      "Final",
	}
	got, err := TransformGame(meta)
	if err != nil {
		t.Fatalf("TransformGame: %v", err)
	}
	if got.HomeTeamID != 1610612756 || got.AwayTeamID != 1610612751 {
		t.Fatalf("alias resolution failed: home=%d away=%d", got.HomeTeamID, got.AwayTeamID)
	}
}

func TestTransformGame_UnknownTricode(t *testing.T) {
	meta := GameMeta{
		GameID:          "0022300123",
		GameDateLocal:   "2024-01-15",
		HomeTeamTricode: "XYZ",
		AwayTeamTricode: "BOS",
	}
	_, err := TransformGame(meta)
	if err == nil {
		t.Fatal("expected error for unknown tricode")
	}
	if !strings.Contains(err.Error(), "XYZ") || !strings.Contains(err.Error(), "0022300123") {
		t.Fatalf("error should cite tricode and game id: %q", err.Error())
	}
}

func TestTransformPbp(t *testing.T) {
	rows := []Row{
		{"EVENTNUM": int64(2), "PERIOD": int64(1), "PCTIMESTRING": "11:45.500", "EVENTMSGTYPE": int64(1), "PLAYER1_ID": int64(2544)},
		{"EVENTNUM": int64(4), "PERIOD": int64(1), "PCTIMESTRING": "not-a-clock"},
		{"EVENTNUM": int64(7), "PERIOD": int64(5), "PCTIMESTRING": "4:30"},
	}
	events, skipped := TransformPbp("0022300123", rows)
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	first := events[0]
	if first.ClockSeconds != 705.5 {
		t.Errorf("clock_seconds = %v, want 705.5", first.ClockSeconds)
	}
	if first.SecondsElapsed+first.ClockSeconds != pbp.PeriodLengthSeconds(first.Period) {
		t.Errorf("elapsed %v + clock %v != period length", first.SecondsElapsed, first.ClockSeconds)
	}

	ot := events[1]
	if ot.SecondsElapsed != 300-270 {
		t.Errorf("overtime elapsed = %v, want 30", ot.SecondsElapsed)
	}
}

func TestTransformPbp_RepeatedEventNum(t *testing.T) {
	rows := []Row{
		{"EVENTNUM": int64(10), "PERIOD": int64(1), "PCTIMESTRING": "8:00", "HOMEDESCRIPTION": "first write"},
		{"EVENTNUM": int64(11), "PERIOD": int64(1), "PCTIMESTRING": "7:40"},
		{"EVENTNUM": int64(10), "PERIOD": int64(1), "PCTIMESTRING": "7:55", "HOMEDESCRIPTION": "corrected"},
	}
	events, skipped := TransformPbp("0022300123", rows)
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	// Feeds repeat event numbers on stat corrections; the later row wins and
	// each event index appears once.
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].EventIdx != 10 || events[0].Description == nil || *events[0].Description != "corrected" {
		t.Errorf("event 10 = %+v, want corrected row", events[0])
	}
	if events[0].ClockSeconds != 475 {
		t.Errorf("clock_seconds = %v, want 475", events[0].ClockSeconds)
	}
}

func TestTransformShots_Dedupe(t *testing.T) {
	base := Row{
		"PLAYER_ID":      int64(2544),
		"PERIOD":         int64(2),
		"LOC_X":          int64(-50),
		"LOC_Y":          int64(120),
		"SHOT_MADE_FLAG": int64(1),
	}
	dup := Row{}
	for k, v := range base {
		dup[k] = v
	}
	distinctEvent := Row{}
	for k, v := range base {
		distinctEvent[k] = v
	}
	distinctEvent["GAME_EVENT_ID"] = int64(181)

	events, skipped := TransformShots("0022300123", []Row{base, dup, distinctEvent})
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	// The exact duplicate collapses; the row carrying an event number stays.
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
}

func TestTransformOfficials(t *testing.T) {
	rows := []Row{
		{"FIRST_NAME": "Scott", "LAST_NAME": "Foster"},
		{"FIRST_NAME": "Tony", "LAST_NAME": "Brothers"},
		{"FIRST_NAME": "J.B.", "LAST_NAME": "DeRosa"},
	}
	crew, err := TransformOfficials("0022300123", rows)
	if err != nil {
		t.Fatalf("TransformOfficials: %v", err)
	}
	if len(crew) != 3 {
		t.Fatalf("crew = %d, want 3", len(crew))
	}
	if crew[0].Role != referee.RoleCrewChief {
		t.Errorf("first official role = %q, want CREW_CHIEF", crew[0].Role)
	}
	if crew[0].NameSlug != "scott-foster" {
		t.Errorf("slug = %q", crew[0].NameSlug)
	}
}

func TestTransformOutcome(t *testing.T) {
	g := game.Game{
		GameID:     "0022300123",
		Season:     "2023-24",
		GameDate:   "2024-01-15",
		HomeTeamID: 1610612747,
		AwayTeamID: 1610612738,
		Status:     game.StatusFinal,
	}
	lineScore := []Row{
		{"TEAM_ID": int64(1610612747), "PTS": int64(114)},
		{"TEAM_ID": int64(1610612738), "PTS": int64(105)},
	}
	out, ok := TransformOutcome(g, lineScore)
	if !ok {
		t.Fatal("expected outcome for final game")
	}
	if out.TotalPoints != 219 || !out.HomeWin || out.Margin != 9 {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	g.Status = game.StatusLive
	if _, ok := TransformOutcome(g, lineScore); ok {
		t.Fatal("live game should not produce an outcome")
	}
}
