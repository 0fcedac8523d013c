package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/hooplake/hooplake/internal/bronze"
)

type fakeStats struct {
	scoreboard []byte
	summary    []byte
	boxTrad    []byte
	pbp        []byte
	shots      []byte
	schedule   []byte

	fail  map[string]error
	calls []string
}

func (f *fakeStats) respond(endpoint string, body []byte) ([]byte, error) {
	f.calls = append(f.calls, endpoint)
	if err, ok := f.fail[endpoint]; ok {
		return nil, err
	}
	return body, nil
}

func (f *fakeStats) Scoreboard(_ context.Context, _ string) ([]byte, error) {
	return f.respond("scoreboardv2", f.scoreboard)
}

func (f *fakeStats) BoxScoreSummary(_ context.Context, _ string) ([]byte, error) {
	return f.respond(bronze.EndpointBoxSummary, f.summary)
}

func (f *fakeStats) BoxScoreTraditional(_ context.Context, _ string) ([]byte, error) {
	return f.respond(bronze.EndpointBoxTrad, f.boxTrad)
}

func (f *fakeStats) PlayByPlay(_ context.Context, _ string) ([]byte, error) {
	return f.respond(bronze.EndpointPlayByPlay, f.pbp)
}

func (f *fakeStats) ShotChart(_ context.Context, _ string, _ []int64) ([]byte, error) {
	return f.respond(bronze.EndpointShotChart, f.shots)
}

func (f *fakeStats) Schedule(_ context.Context, _ string) ([]byte, error) {
	return f.respond("scheduleleaguev2", f.schedule)
}

func newFakeStats() *fakeStats {
	return &fakeStats{
		scoreboard: []byte(scoreboardPayload),
		summary:    []byte(summaryPayload),
		boxTrad:    []byte(boxTradPayload),
		pbp:        []byte(pbpPayload),
		shots:      []byte(shotPayload),
		schedule:   []byte(`{"leagueSchedule":{"seasonYear":"2023-24","gameDates":[]}}`),
		fail:       map[string]error{},
	}
}

func newHarvestService(t *testing.T, stats *fakeStats) (*HarvestService, string) {
	t.Helper()
	root := t.TempDir()
	svc := NewHarvestService(HarvestConfig{RawRoot: root}, stats, &bronze.ManifestStore{}, nil)
	svc.sleep = func(context.Context, time.Duration) error { return nil }
	return svc, root
}

func TestHarvest(t *testing.T) {
	stats := newFakeStats()
	svc, root := newHarvestService(t, stats)

	result, err := svc.Harvest(context.Background(), HarvestInput{Date: "2024-01-15"})
	require.NoError(t, err)

	// The preseason game on the slate is filtered out by season type.
	require.Equal(t, 1, result.Games)
	require.Equal(t, 1, result.ExcludedGames)
	require.Equal(t, 1, result.OKGames)
	require.Zero(t, result.QuarantinedGames)
	require.Positive(t, result.TotalBytes)

	gameDir := filepath.Join(root, "2024-01-15", "0022300123")
	for _, endpoint := range bronze.TierAEndpoints {
		_, statErr := os.Stat(filepath.Join(gameDir, endpoint+".json"))
		require.NoError(t, statErr, endpoint)
	}
	_, statErr := os.Stat(filepath.Join(root, "2024-01-15", bronze.FileScoreboard))
	require.NoError(t, statErr)

	manifest, err := (&bronze.ManifestStore{}).Read(filepath.Join(root, "2024-01-15"))
	require.NoError(t, err)
	require.NotNil(t, manifest)
	require.Equal(t, 1, manifest.Summary.OKGames)
	require.Len(t, manifest.Games, 1)
	require.Equal(t, "0022300123", manifest.Games[0].GameID)
	require.Len(t, manifest.Games[0].Endpoints, 4)
	require.ElementsMatch(t, []string{"LAL", "BOS"}, manifest.Games[0].Teams)
}

func TestHarvest_SeasonTypeColumnAbsent(t *testing.T) {
	stats := newFakeStats()
	// Older scoreboard payloads have no SEASON_TYPE_ID column; every game
	// on the slate is harvested.
	stats.scoreboard = []byte(`{
	  "resource": "scoreboardv2",
	  "parameters": {"GameDate": "01/15/2024", "LeagueID": "00"},
	  "resultSets": [
	    {
	      "name": "GameHeader",
	      "headers": ["GAME_ID", "GAME_STATUS_TEXT"],
	      "rowSet": [
	        ["0022300123", "Final"],
	        ["0012300001", "Final"]
	      ]
	    }
	  ]
	}`)
	svc, _ := newHarvestService(t, stats)

	result, err := svc.Harvest(context.Background(), HarvestInput{Date: "2024-01-15"})
	require.NoError(t, err)
	require.Equal(t, 2, result.Games)
	require.Zero(t, result.ExcludedGames)
	require.Equal(t, 2, result.OKGames)
}

func TestHarvest_MalformedGameIDExcluded(t *testing.T) {
	stats := newFakeStats()
	stats.scoreboard = []byte(`{
	  "resource": "scoreboardv2",
	  "parameters": {"GameDate": "01/15/2024", "LeagueID": "00"},
	  "resultSets": [
	    {
	      "name": "GameHeader",
	      "headers": ["GAME_ID", "GAME_STATUS_TEXT", "SEASON_TYPE_ID"],
	      "rowSet": [
	        ["0022300123", "Final", "2"],
	        ["002230012", "Final", "2"]
	      ]
	    }
	  ]
	}`)
	svc, _ := newHarvestService(t, stats)

	result, err := svc.Harvest(context.Background(), HarvestInput{Date: "2024-01-15"})
	require.NoError(t, err)

	// The nine-character ID is counted as excluded, not fetched.
	require.Equal(t, 1, result.Games)
	require.Equal(t, 1, result.ExcludedGames)
}

func TestHarvest_EndpointFailureQuarantines(t *testing.T) {
	stats := newFakeStats()
	stats.fail[bronze.EndpointBoxSummary] = crerr.New("upstream 500")
	stats.fail[bronze.EndpointBoxTrad] = crerr.New("upstream 500")
	stats.fail[bronze.EndpointShotChart] = crerr.New("upstream 500")
	svc, root := newHarvestService(t, stats)

	result, err := svc.Harvest(context.Background(), HarvestInput{Date: "2024-01-15"})
	require.NoError(t, err)

	// One OK endpoint is below the two required for a harvested game.
	require.Equal(t, 1, result.Games)
	require.Zero(t, result.OKGames)
	require.Equal(t, 1, result.QuarantinedGames)

	quarantine, readErr := os.ReadFile(bronze.QuarantinePath(root))
	require.NoError(t, readErr)
	lines := strings.Split(strings.TrimSpace(string(quarantine)), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], "0022300123 boxscoresummaryv2 upstream 500")
}

func TestHarvest_FailedEndpointDoesNotStopOthers(t *testing.T) {
	stats := newFakeStats()
	stats.fail[bronze.EndpointPlayByPlay] = crerr.New("upstream timeout")
	svc, _ := newHarvestService(t, stats)

	result, err := svc.Harvest(context.Background(), HarvestInput{Date: "2024-01-15"})
	require.NoError(t, err)

	// Three endpoints landed, so the game still counts as harvested even
	// though the manifest records the play-by-play error.
	require.Equal(t, 1, result.OKGames)
	require.Contains(t, stats.calls, bronze.EndpointShotChart)
}

func TestHarvest_InvalidDate(t *testing.T) {
	svc, _ := newHarvestService(t, newFakeStats())
	_, err := svc.Harvest(context.Background(), HarvestInput{Date: "01/15/2024"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSyncSchedule(t *testing.T) {
	stats := newFakeStats()
	svc, root := newHarvestService(t, stats)

	require.NoError(t, svc.SyncSchedule(context.Background(), "2023-24"))
	_, err := os.Stat(filepath.Join(root, "schedule.json"))
	require.NoError(t, err)

	require.ErrorIs(t, svc.SyncSchedule(context.Background(), "2023"), ErrInvalidInput)
}
