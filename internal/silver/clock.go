package silver

import (
	"regexp"
	"strconv"
)

var (
	clockColonPattern = regexp.MustCompile(`^(\d{1,2}):([0-5]\d)(\.\d{1,3})?$`)
	clockISOPattern   = regexp.MustCompile(`^PT(\d+)M(\d+)(\.\d{1,3})?S$`)
)

// ParseClockSeconds converts a game clock string to seconds remaining in the
// period. Accepts M:SS, MM:SS, MM:SS.fff and PT{m}M{s}[.fff]S. The second
// return is false when the string is not a clock.
func ParseClockSeconds(clock string) (float64, bool) {
	match := clockColonPattern.FindStringSubmatch(clock)
	if match == nil {
		match = clockISOPattern.FindStringSubmatch(clock)
	}
	if match == nil {
		return 0, false
	}

	minutes, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	seconds, err := strconv.Atoi(match[2])
	if err != nil {
		return 0, false
	}

	total := float64(minutes*60 + seconds)
	if match[3] != "" {
		frac, err := strconv.ParseFloat("0"+match[3], 64)
		if err != nil {
			return 0, false
		}
		total += frac
	}
	return total, true
}
