package bronze

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/bytedance/sonic"
)

var (
	datePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	gameIDDirName = regexp.MustCompile(`^00[1-9]\d{7}$`)
)

// Endpoint file names under each game directory.
const (
	FileScoreboard     = "scoreboard.json"
	EndpointBoxSummary = "boxscoresummaryv2"
	EndpointBoxTrad    = "boxscoretraditionalv2"
	EndpointPlayByPlay = "playbyplayv2"
	EndpointShotChart  = "shotchartdetail"
)

// TierAEndpoints are fetched per game in this order.
var TierAEndpoints = []string{EndpointBoxSummary, EndpointBoxTrad, EndpointPlayByPlay, EndpointShotChart}

// Reader enumerates the Bronze tree rooted at Root.
type Reader struct {
	Root string
}

func NewReader(root string) *Reader {
	return &Reader{Root: root}
}

func (r *Reader) DateDir(date string) string {
	return filepath.Join(r.Root, date)
}

func (r *Reader) GameDir(date, gameID string) string {
	return filepath.Join(r.Root, date, gameID)
}

// Dates lists harvested dates in ascending order.
func (r *Reader) Dates() []string {
	return r.matchingDirs(r.Root, datePattern)
}

// Games lists game-ID-shaped directories for a date in ascending order.
func (r *Reader) Games(date string) []string {
	return r.matchingDirs(r.DateDir(date), gameIDDirName)
}

// ReadEndpoint returns the raw bytes for one endpoint of one game, or nil
// when the file is missing or not valid JSON.
func (r *Reader) ReadEndpoint(date, gameID, endpoint string) []byte {
	return readValidJSON(filepath.Join(r.GameDir(date, gameID), endpoint+".json"))
}

// ReadScoreboard returns the raw scoreboard bytes for a date, or nil.
func (r *Reader) ReadScoreboard(date string) []byte {
	return readValidJSON(filepath.Join(r.DateDir(date), FileScoreboard))
}

func (r *Reader) matchingDirs(dir string, pattern *regexp.Regexp) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() && pattern.MatchString(entry.Name()) {
			out = append(out, entry.Name())
		}
	}
	sort.Strings(out)
	return out
}

func readValidJSON(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	if !sonic.Valid(data) {
		return nil
	}
	return data
}
