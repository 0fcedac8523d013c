package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/internal/bronze"
	"github.com/hooplake/hooplake/internal/platform/logging"
	"github.com/hooplake/hooplake/internal/platform/validate"
	"github.com/hooplake/hooplake/internal/silver"
)

// interGameDelay spaces consecutive game fan-outs on top of the client-side
// rate limiter.
const interGameDelay = 100 * time.Millisecond

// minOKEndpoints is how many Tier A endpoints must land for a game to count
// as harvested.
const minOKEndpoints = 2

type statsFetcher interface {
	Scoreboard(ctx context.Context, date string) ([]byte, error)
	BoxScoreSummary(ctx context.Context, gameID string) ([]byte, error)
	BoxScoreTraditional(ctx context.Context, gameID string) ([]byte, error)
	PlayByPlay(ctx context.Context, gameID string) ([]byte, error)
	ShotChart(ctx context.Context, gameID string, teamIDs []int64) ([]byte, error)
	Schedule(ctx context.Context, season string) ([]byte, error)
}

type HarvestConfig struct {
	RawRoot string
	// SeasonTypes filters scoreboard games by SEASON_TYPE_ID code
	// ("2" regular season, "4" play-in). Spelled-out names in the column
	// map to their codes; games are included when the column is absent.
	SeasonTypes []string
}

type HarvestInput struct {
	Date string
}

type HarvestResult struct {
	Date             string `json:"date"`
	Games            int    `json:"games"`
	OKGames          int    `json:"ok_games"`
	QuarantinedGames int    `json:"quarantined_games"`
	ExcludedGames    int    `json:"excluded_games"`
	TotalBytes       int64  `json:"total_bytes"`
}

// HarvestService fetches one date's slate from stats.nba.com and lands the
// raw payloads in the Bronze tree, one directory per game.
type HarvestService struct {
	cfg       HarvestConfig
	stats     statsFetcher
	manifests *bronze.ManifestStore
	logger    *logging.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewHarvestService(cfg HarvestConfig, stats statsFetcher, manifests *bronze.ManifestStore, logger *logging.Logger) *HarvestService {
	if len(cfg.SeasonTypes) == 0 {
		cfg.SeasonTypes = []string{"2"}
	}
	return &HarvestService{
		cfg:       cfg,
		stats:     stats,
		manifests: manifests,
		logger:    logger,
		sleep:     sleepContext,
	}
}

func (s *HarvestService) Harvest(ctx context.Context, input HarvestInput) (HarvestResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HarvestService.Harvest")
	defer span.End()

	if s.stats == nil || s.manifests == nil {
		return HarvestResult{}, fmt.Errorf("%w: harvest service is not fully configured", ErrDependencyUnavailable)
	}
	if _, err := time.Parse("2006-01-02", input.Date); err != nil {
		return HarvestResult{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", ErrInvalidInput, input.Date)
	}

	dateDir := filepath.Join(s.cfg.RawRoot, input.Date)
	quarantine := bronze.NewQuarantine(bronze.QuarantinePath(s.cfg.RawRoot))

	gameIDs, excluded, err := s.harvestScoreboard(ctx, input.Date, dateDir)
	if err != nil {
		return HarvestResult{}, err
	}

	result := HarvestResult{Date: input.Date, Games: len(gameIDs), ExcludedGames: excluded}
	s.logger.InfoContext(ctx, "harvesting date",
		"date", input.Date, "games", len(gameIDs), "excluded_games", excluded)

	for i, gameID := range gameIDs {
		if i > 0 {
			if err := s.sleep(ctx, interGameDelay); err != nil {
				return result, err
			}
		}
		record := s.harvestGame(ctx, dateDir, gameID, quarantine)

		manifest, err := s.manifests.Update(dateDir, input.Date, record)
		if err != nil {
			return result, crerr.Wrapf(err, "update manifest for %s", input.Date)
		}
		result.TotalBytes = manifest.Summary.TotalBytes

		okEndpoints := 0
		for _, ep := range record.Endpoints {
			if ep.OK {
				okEndpoints++
			}
		}
		if okEndpoints >= minOKEndpoints {
			result.OKGames++
		} else {
			result.QuarantinedGames++
			s.logger.WarnContext(ctx, "game quarantined",
				"game_id", gameID, "ok_endpoints", okEndpoints, "errors", len(record.Errors))
		}
	}

	return result, nil
}

// SyncSchedule fetches the league schedule for a season ("2023-24") and
// persists it at the Bronze root for date pre-resolution.
func (s *HarvestService) SyncSchedule(ctx context.Context, season string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.HarvestService.SyncSchedule")
	defer span.End()

	if s.stats == nil {
		return fmt.Errorf("%w: harvest service is not fully configured", ErrDependencyUnavailable)
	}
	if !validate.Season(season) {
		return fmt.Errorf("%w: season must be YYYY-YY, got %q", ErrInvalidInput, season)
	}

	body, err := s.stats.Schedule(ctx, season)
	if err != nil {
		return crerr.Wrapf(err, "fetch schedule for %s", season)
	}
	wr, err := persistRawJSON(filepath.Join(s.cfg.RawRoot, "schedule.json"), body)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "schedule synced", "season", season, "bytes", wr.Bytes)
	return nil
}

// harvestScoreboard fetches and persists the slate, returning game IDs that
// pass the season-type filter.
func (s *HarvestService) harvestScoreboard(ctx context.Context, date, dateDir string) ([]string, int, error) {
	body, err := s.stats.Scoreboard(ctx, date)
	if err != nil {
		return nil, 0, crerr.Wrapf(err, "fetch scoreboard for %s", date)
	}
	if _, err := persistRawJSON(filepath.Join(dateDir, bronze.FileScoreboard), body); err != nil {
		return nil, 0, err
	}

	env, err := silver.DecodeEnvelope(body)
	if err != nil {
		return nil, 0, crerr.Wrapf(err, "decode scoreboard for %s", date)
	}

	allowed := make(map[string]struct{}, len(s.cfg.SeasonTypes))
	for _, st := range s.cfg.SeasonTypes {
		allowed[st] = struct{}{}
	}

	var gameIDs []string
	excluded := 0
	for _, row := range env.ResultSetByName("GameHeader").Rows() {
		gameID := row.String("GAME_ID")
		if !validate.GameID(gameID) {
			excluded++
			s.logger.WarnContext(ctx, "malformed scoreboard game id",
				"date", date, "game_id", gameID)
			continue
		}
		if code, present := seasonTypeOf(row); present {
			if _, ok := allowed[code]; !ok {
				excluded++
				continue
			}
		}
		gameIDs = append(gameIDs, gameID)
	}
	return gameIDs, excluded, nil
}

// seasonTypeOf reads the scoreboard season-type column, mapping spelled-out
// names to their codes. The second return is false when the column is absent;
// the filter then includes the game.
func seasonTypeOf(row silver.Row) (string, bool) {
	if _, present := row["SEASON_TYPE_ID"]; !present {
		return "", false
	}
	if n, ok := row.Int64("SEASON_TYPE_ID"); ok {
		return strconv.FormatInt(n, 10), true
	}
	switch name := strings.TrimSpace(row.String("SEASON_TYPE_ID")); strings.ToLower(name) {
	case "regular season":
		return "2", true
	case "pre season", "preseason":
		return "1", true
	case "playoffs":
		return "3", true
	case "play-in", "playin", "play-in tournament":
		return "4", true
	default:
		return name, true
	}
}

// harvestGame fans out over the Tier A endpoints for one game. Failures are
// quarantined and recorded; the remaining endpoints still run.
func (s *HarvestService) harvestGame(ctx context.Context, dateDir, gameID string, quarantine *bronze.Quarantine) bronze.GameRecord {
	record := bronze.GameRecord{
		GameID:    gameID,
		Endpoints: make(map[string]bronze.EndpointRecord, len(bronze.TierAEndpoints)),
		Errors:    []string{},
	}
	gameDir := filepath.Join(dateDir, gameID)

	var teamIDs []int64
	fetchers := map[string]func() ([]byte, error){
		bronze.EndpointBoxSummary: func() ([]byte, error) { return s.stats.BoxScoreSummary(ctx, gameID) },
		bronze.EndpointBoxTrad:    func() ([]byte, error) { return s.stats.BoxScoreTraditional(ctx, gameID) },
		bronze.EndpointPlayByPlay: func() ([]byte, error) { return s.stats.PlayByPlay(ctx, gameID) },
		bronze.EndpointShotChart:  func() ([]byte, error) { return s.stats.ShotChart(ctx, gameID, teamIDs) },
	}

	for _, endpoint := range bronze.TierAEndpoints {
		body, err := fetchers[endpoint]()
		if err == nil {
			var wr bronze.WriteResult
			wr, err = persistRawJSON(filepath.Join(gameDir, endpoint+".json"), body)
			if err == nil {
				record.Endpoints[endpoint] = bronze.EndpointRecord{
					Bytes: wr.Bytes, SHA1: wr.SHA1, Gz: wr.Gz, OK: true,
				}
				if endpoint == bronze.EndpointBoxSummary {
					if env, decodeErr := silver.DecodeEnvelope(body); decodeErr == nil {
						teamIDs = silver.ExtractTeamIDs(env)
						record.Teams = tricodesFromSummary(env)
					}
				}
				continue
			}
		}

		record.Errors = append(record.Errors, fmt.Sprintf("%s: %v", endpoint, err))
		if qErr := quarantine.Append(gameID, endpoint, err); qErr != nil {
			s.logger.ErrorContext(ctx, "quarantine append failed",
				"game_id", gameID, "endpoint", endpoint, "error", qErr)
		}
		s.logger.WarnContext(ctx, "endpoint harvest failed",
			"game_id", gameID, "endpoint", endpoint, "error", err)
	}

	return record
}

func tricodesFromSummary(env *silver.Envelope) []string {
	var out []string
	for _, row := range silver.ExtractLineScoreRows(env) {
		if tricode := row.String("TEAM_ABBREVIATION"); tricode != "" {
			out = append(out, tricode)
		}
	}
	return out
}

// persistRawJSON re-encodes the upstream body so the Bronze file is
// pretty-printed and known-valid JSON.
func persistRawJSON(path string, body []byte) (bronze.WriteResult, error) {
	var payload any
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return bronze.WriteResult{}, crerr.Wrapf(err, "invalid payload for %s", path)
	}
	return bronze.WriteJSON(path, payload)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
