package gamebook

import (
	"regexp"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/domain/referee"
)

// Crew line patterns over text extracted from a gamebook PDF. The first
// listed official is the crew chief.
var (
	officialsLinePattern  = regexp.MustCompile(`(?im)^\s*OFFICIALS?:\s*(.+)$`)
	alternatesLinePattern = regexp.MustCompile(`(?im)^\s*ALTERNATES?:\s*(.+)$`)
	jerseyPrefixPattern   = regexp.MustCompile(`^#?\d+\s+`)
	jerseySuffixPattern   = regexp.MustCompile(`\s*\(#?\d+\)$`)
)

var crewRolesByPosition = []string{
	referee.RoleCrewChief,
	referee.RoleReferee,
	referee.RoleUmpire,
}

// ExtractCrew parses the officiating crew and alternates from gamebook text.
func ExtractCrew(gameID, text string) ([]referee.Assignment, []referee.Alternate, error) {
	assignments := make([]referee.Assignment, 0, 3)
	for i, name := range namesFromLine(officialsLinePattern, text) {
		role := referee.RoleOfficial
		if i < len(crewRolesByPosition) {
			role = crewRolesByPosition[i]
		}
		assignment := referee.Assignment{
			GameID:   gameID,
			Name:     name,
			NameSlug: referee.Slug(name),
			Role:     role,
		}
		if err := assignment.Validate(); err != nil {
			return nil, nil, err
		}
		assignments = append(assignments, assignment)
	}
	if err := referee.ValidateCrew(assignments); err != nil {
		return nil, nil, crerr.Wrapf(err, "game %s", gameID)
	}

	alternates := make([]referee.Alternate, 0, 2)
	for _, name := range namesFromLine(alternatesLinePattern, text) {
		alternate := referee.Alternate{
			GameID:   gameID,
			Name:     name,
			NameSlug: referee.Slug(name),
		}
		if err := alternate.Validate(); err != nil {
			return nil, nil, err
		}
		alternates = append(alternates, alternate)
	}
	return assignments, alternates, nil
}

func namesFromLine(pattern *regexp.Regexp, text string) []string {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	parts := strings.Split(match[1], ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		name = jerseyPrefixPattern.ReplaceAllString(name, "")
		name = jerseySuffixPattern.ReplaceAllString(name, "")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}
