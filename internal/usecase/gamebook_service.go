package usecase

import (
	"context"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/hooplake/hooplake/external/gamebook"
	"github.com/hooplake/hooplake/internal/domain/referee"
	"github.com/hooplake/hooplake/internal/platform/logging"
	"github.com/hooplake/hooplake/internal/platform/validate"
)

type gamebookMirror interface {
	ListPDFs(date string) ([]string, error)
	Download(ctx context.Context, urls []string) (map[string]string, error)
}

type MirrorResult struct {
	Listed     int `json:"listed"`
	Downloaded int `json:"downloaded"`
}

type CrewLoadResult struct {
	Assignments int `json:"assignments"`
	Alternates  int `json:"alternates"`
}

// GamebookService mirrors official game book PDFs and loads referee crews
// from their extracted text.
type GamebookService struct {
	books  gamebookMirror
	refs   referee.Repository
	logger *logging.Logger
}

func NewGamebookService(books gamebookMirror, refs referee.Repository, logger *logging.Logger) *GamebookService {
	return &GamebookService{books: books, refs: refs, logger: logger}
}

// Mirror lists the game book PDFs for a date and downloads them into the
// local cache. Already-cached files are not re-fetched.
func (s *GamebookService) Mirror(ctx context.Context, date string) (MirrorResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GamebookService.Mirror")
	defer span.End()

	if s.books == nil {
		return MirrorResult{}, fmt.Errorf("%w: gamebook client is not configured (GAMEBOOK_ENABLED=false)", ErrDependencyUnavailable)
	}

	urls, err := s.books.ListPDFs(date)
	if err != nil {
		return MirrorResult{}, crerr.Wrapf(err, "list game books for %s", date)
	}
	if len(urls) == 0 {
		return MirrorResult{}, nil
	}

	paths, err := s.books.Download(ctx, urls)
	if err != nil {
		return MirrorResult{Listed: len(urls), Downloaded: len(paths)}, crerr.Wrapf(err, "download game books for %s", date)
	}

	s.logger.InfoContext(ctx, "game books mirrored", "date", date, "listed", len(urls), "downloaded", len(paths))
	return MirrorResult{Listed: len(urls), Downloaded: len(paths)}, nil
}

// LoadCrew parses the OFFICIALS/ALTERNATES lines from a game book's extracted
// text and upserts the referee crew for the game.
func (s *GamebookService) LoadCrew(ctx context.Context, gameID, text string) (CrewLoadResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GamebookService.LoadCrew")
	defer span.End()

	if s.refs == nil {
		return CrewLoadResult{}, fmt.Errorf("%w: referee repository is not configured", ErrDependencyUnavailable)
	}
	if !validate.GameID(gameID) {
		return CrewLoadResult{}, fmt.Errorf("%w: invalid game id %q", ErrInvalidInput, gameID)
	}
	if strings.TrimSpace(text) == "" {
		return CrewLoadResult{}, fmt.Errorf("%w: game book text is empty", ErrInvalidInput)
	}

	assignments, alternates, err := gamebook.ExtractCrew(gameID, text)
	if err != nil {
		return CrewLoadResult{}, crerr.Wrapf(err, "extract crew for game %s", gameID)
	}

	result := CrewLoadResult{}
	if len(assignments) > 0 {
		res, err := s.refs.UpsertAssignments(ctx, assignments)
		if err != nil {
			return result, crerr.Wrapf(err, "upsert crew for game %s", gameID)
		}
		result.Assignments = res.Inserted + res.Updated
	}
	if len(alternates) > 0 {
		res, err := s.refs.UpsertAlternates(ctx, alternates)
		if err != nil {
			return result, crerr.Wrapf(err, "upsert alternates for game %s", gameID)
		}
		result.Alternates = res.Inserted + res.Updated
	}

	s.logger.InfoContext(ctx, "referee crew loaded",
		"game_id", gameID, "assignments", result.Assignments, "alternates", result.Alternates)
	return result, nil
}
