package silver

import (
	"math"
	"testing"
)

func TestParseClockSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"11:45.500", 705.5},
		{"PT11M45.500S", 705.5},
		{"12:00", 720},
		{"0:00", 0},
		{"1:05", 65},
		{"PT5M0S", 300},
		{"PT0M3.200S", 3.2},
	}
	for _, tc := range cases {
		got, ok := ParseClockSeconds(tc.in)
		if !ok {
			t.Errorf("ParseClockSeconds(%q) not recognized", tc.in)
			continue
		}
		if math.Abs(got-tc.want) > 0.001 {
			t.Errorf("ParseClockSeconds(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, in := range []string{"", "11:75", "PT11M", "745.5", "eleven"} {
		if _, ok := ParseClockSeconds(in); ok {
			t.Errorf("ParseClockSeconds(%q) should not parse", in)
		}
	}
}
