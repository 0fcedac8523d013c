package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/hooplake/hooplake/external/bbref"
	"github.com/hooplake/hooplake/internal/bronze"
	"github.com/hooplake/hooplake/internal/domain/crosswalk"
	"github.com/hooplake/hooplake/internal/domain/game"
	"github.com/hooplake/hooplake/internal/domain/injury"
	"github.com/hooplake/hooplake/internal/domain/lineup"
	"github.com/hooplake/hooplake/internal/domain/outcome"
	"github.com/hooplake/hooplake/internal/domain/pbp"
	"github.com/hooplake/hooplake/internal/domain/referee"
	"github.com/hooplake/hooplake/internal/domain/shot"
	"github.com/hooplake/hooplake/internal/platform/logging"
	"github.com/hooplake/hooplake/internal/silver"
)

// Load phases, in order. A phase failure isolates the game: phases that
// depend on the failed one are skipped, other games are unaffected.
const (
	phaseFetchedBoxscore = "FETCHED_BOXSCORE"
	phaseGameUpserted    = "GAME_UPSERTED"
	phasePbpUpserted     = "PBP_UPSERTED"
	phaseLineupsUpserted = "LINEUPS_UPSERTED"
	phaseDone            = "DONE"
)

func phaseFailed(phase string) string {
	return "PHASE_FAILED(" + phase + ")"
}

type LoadConfig struct {
	Concurrency int
}

type LoadInput struct {
	Date string
}

// GameLoadResult is the per-game outcome of a Silver load.
type GameLoadResult struct {
	GameID             string   `json:"game_id"`
	Phase              string   `json:"phase"`
	GameProcessed      bool     `json:"game_processed"`
	PbpEventsProcessed int      `json:"pbp_events_processed"`
	LineupsProcessed   int      `json:"lineups_processed"`
	Errors             []string `json:"errors"`
}

type LoadResult struct {
	Date        string           `json:"date"`
	WorkerCount int              `json:"worker_count"`
	Games       []GameLoadResult `json:"games"`
	OKGames     int              `json:"ok_games"`
	FailedGames int              `json:"failed_games"`
}

// brefFetcher is the slice of the basketball-reference client the crosswalk
// verification needs.
type brefFetcher interface {
	BoxScoreHTML(ctx context.Context, brefGameID string) (string, error)
}

// LoadService transforms harvested Bronze payloads into validated Silver rows
// and upserts them game by game.
type LoadService struct {
	cfg        LoadConfig
	reader     *bronze.Reader
	games      game.Repository
	pbpRepo    pbp.Repository
	shots      shot.Repository
	lineups    lineup.Repository
	refs       referee.Repository
	outcomes   outcome.Repository
	crosswalks crosswalk.Repository
	injuries   injury.Repository
	bref       brefFetcher
	logger     *logging.Logger
}

type LoadRepositories struct {
	Games      game.Repository
	Pbp        pbp.Repository
	Shots      shot.Repository
	Lineups    lineup.Repository
	Referees   referee.Repository
	Outcomes   outcome.Repository
	Crosswalks crosswalk.Repository
	Injuries   injury.Repository
}

func NewLoadService(cfg LoadConfig, reader *bronze.Reader, repos LoadRepositories, bref brefFetcher, logger *logging.Logger) *LoadService {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	return &LoadService{
		cfg:        cfg,
		reader:     reader,
		games:      repos.Games,
		pbpRepo:    repos.Pbp,
		shots:      repos.Shots,
		lineups:    repos.Lineups,
		refs:       repos.Referees,
		outcomes:   repos.Outcomes,
		crosswalks: repos.Crosswalks,
		injuries:   repos.Injuries,
		bref:       bref,
		logger:     logger,
	}
}

func (s *LoadService) Load(ctx context.Context, input LoadInput) (LoadResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoadService.Load")
	defer span.End()

	if s.reader == nil || s.games == nil {
		return LoadResult{}, fmt.Errorf("%w: load service is not fully configured", ErrDependencyUnavailable)
	}

	gameIDs := s.reader.Games(input.Date)
	if len(gameIDs) == 0 {
		return LoadResult{}, fmt.Errorf("%w: no harvested games under %s", ErrNotFound, s.reader.DateDir(input.Date))
	}

	workerCount := s.cfg.Concurrency
	if workerCount > len(gameIDs) {
		workerCount = len(gameIDs)
	}
	result := LoadResult{
		Date:        input.Date,
		WorkerCount: workerCount,
		Games:       make([]GameLoadResult, 0, len(gameIDs)),
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return LoadResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make(chan GameLoadResult, len(gameIDs))
	var okCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, gameID := range gameIDs {
		gameID := gameID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row := s.loadGame(ctx, input.Date, gameID)
			if row.Phase == phaseDone {
				okCount.Add(1)
			} else {
				failedCount.Add(1)
			}
			results <- row
		}); err != nil {
			workers.Done()
			return LoadResult{}, fmt.Errorf("submit game to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Games = append(result.Games, row)
	}
	sort.SliceStable(result.Games, func(i, j int) bool {
		return result.Games[i].GameID < result.Games[j].GameID
	})

	result.OKGames = int(okCount.Load())
	result.FailedGames = int(failedCount.Load())
	return result, nil
}

func (s *LoadService) loadGame(ctx context.Context, date, gameID string) GameLoadResult {
	row := GameLoadResult{GameID: gameID, Errors: []string{}}

	fail := func(phase string, err error) GameLoadResult {
		row.Phase = phaseFailed(phase)
		row.Errors = append(row.Errors, err.Error())
		s.logger.WarnContext(ctx, "game load phase failed",
			"game_id", gameID, "phase", phase, "error", err)
		return row
	}
	softFail := func(stage string, err error) {
		row.Errors = append(row.Errors, fmt.Sprintf("%s: %v", stage, err))
		s.logger.WarnContext(ctx, "game load stage degraded",
			"game_id", gameID, "stage", stage, "error", err)
	}

	summaryEnv, boxEnv, err := s.readBoxscores(date, gameID)
	if err != nil {
		return fail(phaseFetchedBoxscore, err)
	}

	meta, err := silver.ExtractGameMeta(summaryEnv, boxEnv)
	if err != nil {
		return fail(phaseFetchedBoxscore, err)
	}

	// A game-phase failure does not gate play-by-play or lineups: those
	// phases re-check the parent row themselves and drop orphans, so a game
	// upserted on an earlier run keeps getting its children refreshed. The
	// failed phase is still what the row reports.
	var gameRes game.UpsertResult
	gamePhase := ""
	g, err := silver.TransformGame(meta)
	if err == nil {
		gameRes, err = s.games.UpsertMany(ctx, []game.Game{g})
	}
	if err != nil {
		gamePhase = phaseFailed(phaseGameUpserted)
		row.Phase = gamePhase
		row.Errors = append(row.Errors, err.Error())
		s.logger.WarnContext(ctx, "game load phase failed",
			"game_id", gameID, "phase", phaseGameUpserted, "error", err)
	} else {
		row.GameProcessed = true
		row.Phase = phaseGameUpserted
		s.loadGameSatellites(ctx, g, meta, summaryEnv, &row, softFail)
	}

	events, ok := s.loadPbp(ctx, date, gameID, meta, &row, fail, softFail)
	if !ok {
		return row
	}

	if !s.loadLineups(ctx, boxEnv, meta, events, &row, fail) {
		return row
	}

	if gamePhase != "" {
		row.Phase = gamePhase
		return row
	}
	row.Phase = phaseDone
	s.logger.InfoContext(ctx, "game loaded",
		"game_id", gameID,
		"game_rows", gameRes.Inserted+gameRes.Updated,
		"pbp_events", row.PbpEventsProcessed,
		"lineups", row.LineupsProcessed,
		"errors", len(row.Errors))
	return row
}

func (s *LoadService) readBoxscores(date, gameID string) (*silver.Envelope, *silver.Envelope, error) {
	summaryRaw := s.reader.ReadEndpoint(date, gameID, bronze.EndpointBoxSummary)
	boxRaw := s.reader.ReadEndpoint(date, gameID, bronze.EndpointBoxTrad)
	if summaryRaw == nil && boxRaw == nil {
		return nil, nil, fmt.Errorf("no boxscore payloads on disk for game %s", gameID)
	}

	var summaryEnv, boxEnv *silver.Envelope
	var err error
	if summaryRaw != nil {
		if summaryEnv, err = silver.DecodeEnvelope(summaryRaw); err != nil {
			return nil, nil, err
		}
	}
	if boxRaw != nil {
		if boxEnv, err = silver.DecodeEnvelope(boxRaw); err != nil {
			return nil, nil, err
		}
	}
	return summaryEnv, boxEnv, nil
}

// loadGameSatellites handles the rows that hang off the game record but do
// not gate later phases: officials, inactives, outcome and the ID crosswalk.
func (s *LoadService) loadGameSatellites(ctx context.Context, g game.Game, meta silver.GameMeta, summaryEnv *silver.Envelope, row *GameLoadResult, softFail func(string, error)) {
	if s.refs != nil {
		assignments, err := silver.TransformOfficials(g.GameID, silver.ExtractOfficialRows(summaryEnv))
		if err != nil {
			softFail("officials", err)
		} else if len(assignments) > 0 {
			if _, err := s.refs.UpsertAssignments(ctx, assignments); err != nil {
				softFail("officials", err)
			}
		}
	}

	if s.injuries != nil {
		statuses := silver.TransformInactive(g.GameID, silver.ExtractInactiveRows(summaryEnv))
		if len(statuses) > 0 {
			if _, err := s.injuries.UpsertMany(ctx, statuses); err != nil {
				softFail("inactive players", err)
			}
		}
	}

	if s.outcomes != nil {
		if o, ok := silver.TransformOutcome(g, silver.ExtractLineScoreRows(summaryEnv)); ok {
			if _, err := s.outcomes.UpsertMany(ctx, []outcome.Outcome{o}); err != nil {
				softFail("outcome", err)
			}
		}
	}

	if s.crosswalks != nil && meta.HomeTeamTricode != "" {
		brefID, err := bbref.GameID(g.GameDate, meta.HomeTeamTricode)
		if err != nil {
			softFail("crosswalk", err)
			return
		}
		// With a client configured, the derived ID is only recorded once the
		// basketball-reference box score resolves and carries a line score.
		if s.bref != nil {
			html, err := s.bref.BoxScoreHTML(ctx, brefID)
			if err != nil {
				softFail("crosswalk", err)
				return
			}
			if bbref.LineScore(html) == "" {
				softFail("crosswalk", fmt.Errorf("box score %s has no line score", brefID))
				return
			}
		}
		if _, err := s.crosswalks.UpsertMany(ctx, []crosswalk.Row{{GameID: g.GameID, BrefGameID: &brefID}}); err != nil {
			softFail("crosswalk", err)
		}
	}
}

// loadPbp returns the transformed events for downstream lineup derivation and
// false when the phase failed hard.
func (s *LoadService) loadPbp(ctx context.Context, date, gameID string, meta silver.GameMeta, row *GameLoadResult, fail func(string, error) GameLoadResult, softFail func(string, error)) ([]pbp.Event, bool) {
	pbpRaw := s.reader.ReadEndpoint(date, gameID, bronze.EndpointPlayByPlay)
	if pbpRaw == nil {
		return nil, true
	}
	env, err := silver.DecodeEnvelope(pbpRaw)
	if err != nil {
		fail(phasePbpUpserted, err)
		return nil, false
	}

	events, skipped := silver.TransformPbp(meta.GameID, silver.ExtractPbpRows(env))
	if skipped > 0 {
		s.logger.WarnContext(ctx, "skipped invalid pbp rows", "game_id", gameID, "skipped", skipped)
	}
	if len(events) > 0 && s.pbpRepo != nil {
		valid, missing, err := partitionByParentGame(ctx, s.games, events, func(e pbp.Event) string { return e.GameID })
		if err != nil {
			fail(phasePbpUpserted, err)
			return nil, false
		}
		s.logOrphanDrops(ctx, "pbp_events", missing, len(events)-len(valid))
		if len(valid) > 0 {
			res, err := s.pbpRepo.UpsertMany(ctx, valid)
			if err != nil {
				fail(phasePbpUpserted, err)
				return nil, false
			}
			row.PbpEventsProcessed = res.Inserted + res.Updated
		}
	}
	row.Phase = phasePbpUpserted

	if s.shots != nil {
		if shotRaw := s.reader.ReadEndpoint(date, gameID, bronze.EndpointShotChart); shotRaw != nil {
			if shotEnv, err := silver.DecodeEnvelope(shotRaw); err != nil {
				softFail("shot chart", err)
			} else {
				shots, deduped := silver.TransformShots(meta.GameID, silver.ExtractShotRows(shotEnv))
				if deduped > 0 {
					s.logger.DebugContext(ctx, "deduplicated shot rows", "game_id", gameID, "dropped", deduped)
				}
				valid, missing, err := partitionByParentGame(ctx, s.games, shots, func(e shot.Event) string { return e.GameID })
				if err != nil {
					softFail("shot chart", err)
				} else {
					s.logOrphanDrops(ctx, "shot_events", missing, len(shots)-len(valid))
					if len(valid) > 0 {
						if _, err := s.shots.UpsertMany(ctx, valid); err != nil {
							softFail("shot chart", err)
						}
					}
				}
			}
		}
	}

	return events, true
}

func (s *LoadService) loadLineups(ctx context.Context, boxEnv *silver.Envelope, meta silver.GameMeta, events []pbp.Event, row *GameLoadResult, fail func(string, error) GameLoadResult) bool {
	if s.lineups == nil {
		return true
	}
	starterRows := silver.StarterRows(boxEnv)
	if len(starterRows) == 0 {
		return true
	}

	startingLineups, err := silver.TransformStartingLineups(meta.GameID, starterRows)
	if err != nil {
		fail(phaseLineupsUpserted, err)
		return false
	}
	validLineups, missing, err := partitionByParentGame(ctx, s.games, startingLineups, func(l lineup.StartingLineup) string { return l.GameID })
	if err != nil {
		fail(phaseLineupsUpserted, err)
		return false
	}
	s.logOrphanDrops(ctx, "starting_lineups", missing, len(startingLineups)-len(validLineups))
	slRes, err := s.lineups.UpsertStartingLineups(ctx, validLineups)
	if err != nil {
		fail(phaseLineupsUpserted, err)
		return false
	}
	processed := slRes.Inserted + slRes.Updated

	if len(events) > 0 {
		startersByTeam := make(map[int64][]int64, len(validLineups))
		for _, sl := range validLineups {
			startersByTeam[sl.TeamID] = sl.PlayerIDs
		}
		stints := silver.DeriveLineupStints(meta.GameID, startersByTeam, events)
		if len(stints) > 0 {
			stRes, err := s.lineups.UpsertStints(ctx, stints)
			if err != nil {
				fail(phaseLineupsUpserted, err)
				return false
			}
			processed += stRes.Inserted + stRes.Updated
		}
	}

	row.LineupsProcessed = processed
	row.Phase = phaseLineupsUpserted
	return true
}
