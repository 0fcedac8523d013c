package nbastats

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// Endpoint names as they appear in URLs and in the Bronze tree.
const (
	EndpointScoreboard     = "scoreboardv2"
	EndpointBoxSummary     = "boxscoresummaryv2"
	EndpointBoxTraditional = "boxscoretraditionalv2"
	EndpointPlayByPlay     = "playbyplayv2"
	EndpointShotChart      = "shotchartdetail"
	EndpointSchedule       = "scheduleleaguev2"
)

// Scoreboard fetches the slate for one date (YYYY-MM-DD).
func (c *Client) Scoreboard(ctx context.Context, date string) ([]byte, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, crerr.Wrapf(err, "nbastats: invalid scoreboard date %q", date)
	}
	params := url.Values{}
	params.Set("GameDate", parsed.Format("01/02/2006"))
	params.Set("LeagueID", "00")
	params.Set("DayOffset", "0")
	body, _, err := c.Get(ctx, EndpointScoreboard, params)
	return body, err
}

// BoxScoreSummary fetches boxscoresummaryv2 for one game.
func (c *Client) BoxScoreSummary(ctx context.Context, gameID string) ([]byte, error) {
	params := url.Values{}
	params.Set("GameID", gameID)
	body, _, err := c.Get(ctx, EndpointBoxSummary, params)
	return body, err
}

// BoxScoreTraditional fetches boxscoretraditionalv2 for one game.
func (c *Client) BoxScoreTraditional(ctx context.Context, gameID string) ([]byte, error) {
	params := url.Values{}
	params.Set("GameID", gameID)
	params.Set("StartPeriod", "0")
	params.Set("EndPeriod", "10")
	params.Set("StartRange", "0")
	params.Set("EndRange", "28800")
	params.Set("RangeType", "0")
	body, _, err := c.Get(ctx, EndpointBoxTraditional, params)
	return body, err
}

// PlayByPlay fetches playbyplayv2 for one game.
func (c *Client) PlayByPlay(ctx context.Context, gameID string) ([]byte, error) {
	params := url.Values{}
	params.Set("GameID", gameID)
	params.Set("StartPeriod", "0")
	params.Set("EndPeriod", "10")
	body, _, err := c.Get(ctx, EndpointPlayByPlay, params)
	return body, err
}

// Schedule fetches the league schedule for a season ("2023-24").
func (c *Client) Schedule(ctx context.Context, season string) ([]byte, error) {
	params := url.Values{}
	params.Set("LeagueID", "00")
	params.Set("Season", season)
	body, _, err := c.Get(ctx, EndpointSchedule, params)
	return body, err
}

// ShotChart fetches shotchartdetail for one game. When the game-scoped call
// fails it falls back to one call per team, concatenates the
// Shot_Chart_Detail rows and deduplicates them on
// (GAME_ID, PLAYER_ID, PERIOD, MINUTES_REMAINING, SECONDS_REMAINING, LOC_X, LOC_Y).
func (c *Client) ShotChart(ctx context.Context, gameID string, teamIDs []int64) ([]byte, error) {
	body, _, err := c.Get(ctx, EndpointShotChart, shotChartParams(gameID, 0))
	if err == nil {
		return body, nil
	}
	if len(teamIDs) == 0 {
		return nil, err
	}
	c.logger.WarnContext(ctx, "game-scoped shot chart failed, falling back to per-team calls",
		"game_id", gameID, "error", err)

	var merged *shotEnvelope
	for _, teamID := range teamIDs {
		teamBody, _, teamErr := c.Get(ctx, EndpointShotChart, shotChartParams(gameID, teamID))
		if teamErr != nil {
			c.logger.WarnContext(ctx, "per-team shot chart failed",
				"game_id", gameID, "team_id", teamID, "error", teamErr)
			continue
		}
		env, decodeErr := decodeShotEnvelope(teamBody)
		if decodeErr != nil {
			c.logger.WarnContext(ctx, "per-team shot chart undecodable",
				"game_id", gameID, "team_id", teamID, "error", decodeErr)
			continue
		}
		if merged == nil {
			merged = env
			continue
		}
		mergeShotRows(merged, env)
	}
	if merged == nil {
		return nil, crerr.Wrapf(err, "nbastats: shot chart unavailable for game %s", gameID)
	}

	dedupeShotRows(merged)
	out, err := sonic.Marshal(merged)
	if err != nil {
		return nil, crerr.Wrap(err, "nbastats: encode merged shot chart")
	}
	return out, nil
}

func shotChartParams(gameID string, teamID int64) url.Values {
	params := url.Values{}
	params.Set("GameID", gameID)
	params.Set("TeamID", strconv.FormatInt(teamID, 10))
	params.Set("PlayerID", "0")
	params.Set("SeasonType", "Regular Season")
	params.Set("ContextMeasure", "FGA")
	return params
}

// shotEnvelope is the minimal slice of the upstream shape needed to merge
// per-team responses.
type shotEnvelope struct {
	Resource   string           `json:"resource"`
	Parameters any              `json:"parameters"`
	ResultSets []*shotResultSet `json:"resultSets"`
}

type shotResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

const shotDetailSetName = "Shot_Chart_Detail"

func decodeShotEnvelope(data []byte) (*shotEnvelope, error) {
	var env shotEnvelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *shotEnvelope) detailSet() *shotResultSet {
	for _, rs := range e.ResultSets {
		if rs.Name == shotDetailSetName {
			return rs
		}
	}
	return nil
}

func mergeShotRows(dst, src *shotEnvelope) {
	dstSet := dst.detailSet()
	srcSet := src.detailSet()
	if dstSet == nil || srcSet == nil {
		return
	}
	dstSet.RowSet = append(dstSet.RowSet, srcSet.RowSet...)
}

var shotDedupeColumns = []string{
	"GAME_ID", "PLAYER_ID", "PERIOD", "MINUTES_REMAINING", "SECONDS_REMAINING", "LOC_X", "LOC_Y",
}

func dedupeShotRows(env *shotEnvelope) {
	set := env.detailSet()
	if set == nil {
		return
	}
	indexes := make([]int, 0, len(shotDedupeColumns))
	for _, col := range shotDedupeColumns {
		for i, header := range set.Headers {
			if header == col {
				indexes = append(indexes, i)
				break
			}
		}
	}

	seen := make(map[string]struct{}, len(set.RowSet))
	out := set.RowSet[:0]
	for _, row := range set.RowSet {
		key := rowKey(row, indexes)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	set.RowSet = out
}

func rowKey(row []any, indexes []int) string {
	key := ""
	for _, idx := range indexes {
		if idx < len(row) {
			key += fmt.Sprintf("%v|", row[idx])
		} else {
			key += "|"
		}
	}
	return key
}
