package bbref

import "testing"

const samplePage = `
<html><body>
<table class="stats" id="line_score"><tr><td>LAL</td><td>114</td></tr></table>
<!--
<table id="box-LAL-game-basic"><tr><td>starter</td></tr></table>
-->
<table id="box-BOS-game-basic"><tr><td>starter</td></tr></table>
<table id="four_factors"><tr></tr></table>
</body></html>`

func TestTables(t *testing.T) {
	tables := Tables(samplePage)
	if len(tables) != 4 {
		t.Fatalf("tables = %d, want 4 (commented tables included)", len(tables))
	}
	if _, ok := tables["box-LAL-game-basic"]; !ok {
		t.Error("commented-out table not extracted")
	}
}

func TestLineScoreAndBoxTables(t *testing.T) {
	if ls := LineScore(samplePage); ls == "" {
		t.Error("line_score not found")
	}
	boxes := BoxTables(samplePage)
	if len(boxes) != 2 {
		t.Fatalf("box tables = %d, want 2", len(boxes))
	}
	if _, ok := boxes["four_factors"]; ok {
		t.Error("non-box table leaked into BoxTables")
	}
}

func TestGameID(t *testing.T) {
	id, err := GameID("2024-01-15", "lal")
	if err != nil || id != "202401150LAL" {
		t.Fatalf("GameID = %q, %v", id, err)
	}
	if _, err := GameID("01/15/2024", "LAL"); err == nil {
		t.Error("expected error for malformed date")
	}
	if _, err := GameID("2024-01-15", "L"); err == nil {
		t.Error("expected error for malformed tricode")
	}
}
