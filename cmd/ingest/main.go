package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hooplake/hooplake/internal/app"
	"github.com/hooplake/hooplake/internal/config"
	"github.com/hooplake/hooplake/internal/observability"
	"github.com/hooplake/hooplake/internal/platform/logging"
	"github.com/hooplake/hooplake/internal/usecase"
)

const maxPrintedErrors = 5

func main() {
	os.Exit(realMain())
}

func realMain() int {
	if len(os.Args) < 2 {
		printUsage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTrace, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdownTrace(shutdownCtx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
	}()

	pprofSrv, err := observability.StartPprofServer(cfg, logger)
	if err != nil {
		logger.Error("start pprof", "error", err)
		return 1
	}
	defer func() {
		if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
			logger.Error("stop pprof", "error", err)
		}
	}()

	if err := run(ctx, cfg, logger, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
		return 1
	}

	return 0
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger, command string, args []string) error {
	switch strings.ToLower(strings.TrimSpace(command)) {
	case "raw-harvest":
		return runRawHarvest(ctx, cfg, logger, args)
	case "silver-load":
		return runSilverLoad(ctx, cfg, logger, args)
	case "schedule-sync":
		return runScheduleSync(ctx, cfg, logger, args)
	case "gamebook-mirror":
		return runGamebookMirror(ctx, cfg, logger, args)
	case "ref-crew":
		return runRefCrew(ctx, cfg, logger, args)
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runRawHarvest(ctx context.Context, cfg config.Config, logger *logging.Logger, args []string) error {
	fs := flag.NewFlagSet("raw-harvest", flag.ContinueOnError)
	date := fs.String("date", "", "slate date, YYYY-MM-DD (required)")
	root := fs.String("root", cfg.RawRoot, "bronze tree root directory")
	rateLimit := fs.Float64("rate-limit", cfg.StatsRateLimit, "stats.nba.com requests per second")
	retries := fs.Int("retries", cfg.StatsMaxRetries, "max retries per endpoint request")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *date == "" {
		fs.Usage()
		return fmt.Errorf("-date is required")
	}

	cfg.RawRoot = *root
	cfg.StatsRateLimit = *rateLimit
	cfg.StatsMaxRetries = *retries

	svc, err := app.NewHarvestService(cfg, logger)
	if err != nil {
		return err
	}

	res, err := svc.Harvest(ctx, usecase.HarvestInput{Date: *date})
	if err != nil {
		return err
	}

	fmt.Printf("harvest %s: %d game(s), %d ok, %d quarantined, %d excluded, %d bytes\n",
		res.Date, res.Games, res.OKGames, res.QuarantinedGames, res.ExcludedGames, res.TotalBytes)
	if res.QuarantinedGames > 0 {
		return fmt.Errorf("%d game(s) quarantined, see %s", res.QuarantinedGames, *root)
	}
	return nil
}

func runSilverLoad(ctx context.Context, cfg config.Config, logger *logging.Logger, args []string) error {
	fs := flag.NewFlagSet("silver-load", flag.ContinueOnError)
	date := fs.String("date", "", "slate date, YYYY-MM-DD (required)")
	rawRoot := fs.String("raw-root", cfg.RawRoot, "bronze tree root directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *date == "" {
		fs.Usage()
		return fmt.Errorf("-date is required")
	}

	cfg.RawRoot = *rawRoot

	db, err := app.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := app.NewLoadService(cfg, db, logger)
	if err != nil {
		return err
	}
	res, err := svc.Load(ctx, usecase.LoadInput{Date: *date})
	if err != nil {
		return err
	}

	fmt.Printf("load %s: %d game(s), %d ok, %d failed, workers=%d\n",
		res.Date, len(res.Games), res.OKGames, res.FailedGames, res.WorkerCount)
	for _, g := range res.Games {
		fmt.Printf("  %s phase=%s game=%t pbp=%d lineups=%d\n",
			g.GameID, g.Phase, g.GameProcessed, g.PbpEventsProcessed, g.LineupsProcessed)
		for i, msg := range g.Errors {
			if i == maxPrintedErrors {
				fmt.Printf("    ... %d more error(s)\n", len(g.Errors)-maxPrintedErrors)
				break
			}
			fmt.Printf("    error: %s\n", msg)
		}
	}
	if res.FailedGames > 0 {
		return fmt.Errorf("%d game(s) failed to load", res.FailedGames)
	}
	return nil
}

func runScheduleSync(ctx context.Context, cfg config.Config, logger *logging.Logger, args []string) error {
	fs := flag.NewFlagSet("schedule-sync", flag.ContinueOnError)
	season := fs.String("season", "", "season label, YYYY-YY (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *season == "" {
		fs.Usage()
		return fmt.Errorf("-season is required")
	}

	svc, err := app.NewHarvestService(cfg, logger)
	if err != nil {
		return err
	}
	if err := svc.SyncSchedule(ctx, *season); err != nil {
		return err
	}

	fmt.Printf("schedule %s synced to %s\n", *season, cfg.RawRoot)
	return nil
}

func runGamebookMirror(ctx context.Context, cfg config.Config, logger *logging.Logger, args []string) error {
	fs := flag.NewFlagSet("gamebook-mirror", flag.ContinueOnError)
	date := fs.String("date", "", "slate date, YYYY-MM-DD (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *date == "" {
		fs.Usage()
		return fmt.Errorf("-date is required")
	}

	db, err := app.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := app.NewGamebookService(cfg, db, logger)
	if err != nil {
		return err
	}
	res, err := svc.Mirror(ctx, *date)
	if err != nil {
		return err
	}

	fmt.Printf("gamebooks %s: %d listed, %d downloaded to %s\n", *date, res.Listed, res.Downloaded, cfg.GamebookCacheDir)
	return nil
}

func runRefCrew(ctx context.Context, cfg config.Config, logger *logging.Logger, args []string) error {
	fs := flag.NewFlagSet("ref-crew", flag.ContinueOnError)
	gameID := fs.String("game-id", "", "10-digit game id (required)")
	textPath := fs.String("text", "", "path to extracted game book text (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *gameID == "" || *textPath == "" {
		fs.Usage()
		return fmt.Errorf("-game-id and -text are required")
	}

	text, err := os.ReadFile(*textPath)
	if err != nil {
		return fmt.Errorf("read game book text: %w", err)
	}

	db, err := app.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := app.NewGamebookService(cfg, db, logger)
	if err != nil {
		return err
	}
	res, err := svc.LoadCrew(ctx, *gameID, string(text))
	if err != nil {
		return err
	}

	fmt.Printf("crew %s: %d assignment(s), %d alternate(s)\n", *gameID, res.Assignments, res.Alternates)
	return nil
}

func printUsage() {
	prog := os.Args[0]
	fmt.Fprintf(os.Stderr, "usage: %s <command> [flags]\n\n", prog)
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  raw-harvest     fetch one date's slate into the bronze tree")
	fmt.Fprintln(os.Stderr, "  silver-load     transform and upsert one harvested date into postgres")
	fmt.Fprintln(os.Stderr, "  schedule-sync   fetch a season schedule snapshot")
	fmt.Fprintln(os.Stderr, "  gamebook-mirror download official game book PDFs for a date")
	fmt.Fprintln(os.Stderr, "  ref-crew        load a referee crew from extracted game book text")
	fmt.Fprintln(os.Stderr, "\nexamples:")
	fmt.Fprintf(os.Stderr, "  %s raw-harvest -date 2024-01-15\n", prog)
	fmt.Fprintf(os.Stderr, "  %s silver-load -date 2024-01-15\n", prog)
}
