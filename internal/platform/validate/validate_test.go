package validate

import "testing"

func TestGameID(t *testing.T) {
	valid := []string{"0022301234", "0012300001", "0032200415", "0042300101"}
	for _, v := range valid {
		if !GameID(v) {
			t.Errorf("expected %q to be a valid game ID", v)
		}
	}

	invalid := []string{"", "22301234", "0002301234", "00223012345", "002230123", "0022a01234"}
	for _, v := range invalid {
		if GameID(v) {
			t.Errorf("expected %q to be rejected", v)
		}
	}
}

func TestClock(t *testing.T) {
	valid := []string{"11:45", "1:05", "11:45.500", "PT11M45.500S", "PT5M0S"}
	for _, v := range valid {
		if !Clock(v) {
			t.Errorf("expected %q to be a valid clock", v)
		}
	}

	invalid := []string{"", "11:75", "11-45", "PT11M", "745.5"}
	for _, v := range invalid {
		if Clock(v) {
			t.Errorf("expected %q to be rejected", v)
		}
	}
}

func TestSeason(t *testing.T) {
	if !Season("2023-24") {
		t.Error("expected 2023-24 to be valid")
	}
	for _, v := range []string{"2023", "23-24", "2023-245", "UNKNOWN"} {
		if Season(v) {
			t.Errorf("expected %q to be rejected", v)
		}
	}
}
