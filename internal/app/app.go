package app

import (
	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/hooplake/hooplake/external/bbref"
	"github.com/hooplake/hooplake/external/gamebook"
	"github.com/hooplake/hooplake/external/nbastats"
	"github.com/hooplake/hooplake/internal/bronze"
	"github.com/hooplake/hooplake/internal/config"
	"github.com/hooplake/hooplake/internal/infrastructure/repository/postgres"
	"github.com/hooplake/hooplake/internal/platform/logging"
	"github.com/hooplake/hooplake/internal/platform/resilience"
	"github.com/hooplake/hooplake/internal/usecase"
)

// NewHarvestService wires the stats client and Bronze stores for a harvest
// run. It does not touch the database.
func NewHarvestService(cfg config.Config, logger *logging.Logger) (*usecase.HarvestService, error) {
	client, err := nbastats.NewClient(nbastats.Config{
		BaseURL:        cfg.StatsBaseURL,
		Proxy:          cfg.StatsProxy,
		Timeout:        cfg.StatsTimeout,
		ConnectTimeout: cfg.StatsConnectTimeout,
		MaxRetries:     cfg.StatsMaxRetries,
		RateLimit:      cfg.StatsRateLimit,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StatsCircuitEnabled,
			FailureThreshold: cfg.StatsCircuitFailureCount,
			OpenTimeout:      cfg.StatsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StatsCircuitHalfOpenMaxReq,
		},
		Logger: logger,
	})
	if err != nil {
		return nil, crerr.Wrap(err, "build stats client")
	}

	return usecase.NewHarvestService(usecase.HarvestConfig{
		RawRoot:     cfg.RawRoot,
		SeasonTypes: cfg.SeasonTypes,
	}, client, &bronze.ManifestStore{}, logger), nil
}

// OpenDB connects to Postgres with otel query instrumentation.
func OpenDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, false)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "connect postgres")
	}
	db.SetMaxOpenConns(cfg.LoadConcurrency * 2)
	db.SetMaxIdleConns(cfg.LoadConcurrency)
	return db, nil
}

// NewLoadService wires the Bronze reader and Postgres repositories for a
// Silver load run. With BBREF_ENABLED set, crosswalk rows are verified
// against basketball-reference before they are recorded.
func NewLoadService(cfg config.Config, db *sqlx.DB, logger *logging.Logger) (*usecase.LoadService, error) {
	repos := usecase.LoadRepositories{
		Games:      postgres.NewGameRepository(db),
		Pbp:        postgres.NewPbpRepository(db),
		Shots:      postgres.NewShotRepository(db),
		Lineups:    postgres.NewLineupRepository(db),
		Referees:   postgres.NewRefereeRepository(db),
		Outcomes:   postgres.NewOutcomeRepository(db),
		Crosswalks: postgres.NewCrosswalkRepository(db),
		Injuries:   postgres.NewInjuryRepository(db),
	}

	loadCfg := usecase.LoadConfig{Concurrency: cfg.LoadConcurrency}
	reader := bronze.NewReader(cfg.RawRoot)
	if !cfg.BBRefEnabled {
		return usecase.NewLoadService(loadCfg, reader, repos, nil, logger), nil
	}

	bref, err := bbref.NewClient(bbref.Config{
		BaseURL: cfg.BBRefBaseURL,
		Timeout: cfg.BBRefTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, crerr.Wrap(err, "build basketball-reference client")
	}
	return usecase.NewLoadService(loadCfg, reader, repos, bref, logger), nil
}

// NewGamebookService wires the game book mirror when enabled; the referee
// repository is always wired so crews can load from pre-extracted text.
func NewGamebookService(cfg config.Config, db *sqlx.DB, logger *logging.Logger) (*usecase.GamebookService, error) {
	var books *gamebook.Client
	if cfg.GamebookEnabled {
		var err error
		books, err = gamebook.NewClient(gamebook.Config{
			BaseURL:     cfg.GamebookBaseURL,
			Timeout:     cfg.GamebookTimeout,
			CacheDir:    cfg.GamebookCacheDir,
			Concurrency: cfg.GamebookConcurrency,
			Logger:      logger,
		})
		if err != nil {
			return nil, crerr.Wrap(err, "build gamebook client")
		}
	}
	if books == nil {
		return usecase.NewGamebookService(nil, postgres.NewRefereeRepository(db), logger), nil
	}
	return usecase.NewGamebookService(books, postgres.NewRefereeRepository(db), logger), nil
}
