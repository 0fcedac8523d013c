package lineup

import "testing"

func TestPlayerKey_SortsIDs(t *testing.T) {
	key := PlayerKey([]int64{203999, 1629029, 201939, 2544, 101108})
	want := "2544-101108-201939-203999-1629029"
	if key != want {
		t.Fatalf("PlayerKey = %q, want %q", key, want)
	}
}

func TestStintValidate(t *testing.T) {
	valid := Stint{
		GameID:        "0022301234",
		TeamID:        1610612747,
		Period:        1,
		PlayerIDs:     []int64{2544, 101108, 201939, 203999, 1629029},
		SecondsPlayed: 312.4,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid stint, got %v", err)
	}

	fourPlayers := valid
	fourPlayers.PlayerIDs = valid.PlayerIDs[:4]
	if err := fourPlayers.Validate(); err == nil {
		t.Fatal("expected error for 4-player lineup")
	}

	duplicate := valid
	duplicate.PlayerIDs = []int64{2544, 2544, 201939, 203999, 1629029}
	if err := duplicate.Validate(); err == nil {
		t.Fatal("expected error for duplicate player")
	}

	negative := valid
	negative.SecondsPlayed = -1
	if err := negative.Validate(); err == nil {
		t.Fatal("expected error for negative seconds_played")
	}
}
