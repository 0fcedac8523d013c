package bbref

import (
	"regexp"
	"strings"
)

// The reference site keys tables by element id: "line_score" for the per-team
// score and "box-{TRICODE}-game-basic" style ids for per-team boxes. The site
// comments out some tables; uncommenting first is part of the contract.
var (
	tableOpenPattern = regexp.MustCompile(`(?is)<table[^>]*\bid="([^"]+)"[^>]*>`)
	commentPattern   = regexp.MustCompile(`(?s)<!--(.*?)-->`)
)

const LineScoreTableID = "line_score"

// IsBoxTableID reports whether id names a per-team box table.
func IsBoxTableID(id string) bool {
	return strings.HasPrefix(id, "box-")
}

// Tables extracts every <table id="..."> block from a page, keyed by id.
// Tables inside HTML comments are included.
func Tables(html string) map[string]string {
	expanded := commentPattern.ReplaceAllString(html, "$1")
	out := make(map[string]string)

	for {
		loc := tableOpenPattern.FindStringSubmatchIndex(expanded)
		if loc == nil {
			break
		}
		id := expanded[loc[2]:loc[3]]
		rest := expanded[loc[1]:]
		end := strings.Index(strings.ToLower(rest), "</table>")
		if end < 0 {
			break
		}
		if _, dup := out[id]; !dup {
			out[id] = rest[:end]
		}
		expanded = rest[end+len("</table>"):]
	}
	return out
}

// LineScore returns the inner HTML of the line_score table, or "".
func LineScore(html string) string {
	return Tables(html)[LineScoreTableID]
}

// BoxTables returns the per-team box tables keyed by id.
func BoxTables(html string) map[string]string {
	out := make(map[string]string)
	for id, body := range Tables(html) {
		if IsBoxTableID(id) {
			out[id] = body
		}
	}
	return out
}
