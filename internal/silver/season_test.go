package silver

import "testing"

func TestDeriveSeasonFromGameID(t *testing.T) {
	season, ok := DeriveSeasonFromGameID("0022300123")
	if !ok || season != "2023-24" {
		t.Fatalf("DeriveSeasonFromGameID = %q, %v; want 2023-24", season, ok)
	}
	if _, ok := DeriveSeasonFromGameID("bogus"); ok {
		t.Fatal("expected malformed game id to be rejected")
	}
}

func TestDeriveSeasonFromDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-15": "2023-24",
		"2024-10-15": "2024-25",
		"2024-09-30": "2023-24",
		"1999-11-02": "1999-00",
	}
	for in, want := range cases {
		got, ok := DeriveSeasonFromDate(in)
		if !ok || got != want {
			t.Errorf("DeriveSeasonFromDate(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
}

func TestDeriveSeason_Precedence(t *testing.T) {
	if got := DeriveSeason("2021-22", "0022300123", "2024-01-15"); got != "2021-22" {
		t.Errorf("explicit season should win, got %q", got)
	}
	if got := DeriveSeason("not-a-season", "0022300123", "2024-01-15"); got != "2023-24" {
		t.Errorf("game id should win over date, got %q", got)
	}
	if got := DeriveSeason("", "bogus", "2024-10-15"); got != "2024-25" {
		t.Errorf("date fallback failed, got %q", got)
	}
	if got := DeriveSeason("", "", ""); got != "UNKNOWN" {
		t.Errorf("expected UNKNOWN, got %q", got)
	}
}
