package lineup

import (
	"context"

	"github.com/hooplake/hooplake/internal/domain/game"
)

type Repository interface {
	UpsertStints(ctx context.Context, stints []Stint) (game.UpsertResult, error)
	UpsertStartingLineups(ctx context.Context, lineups []StartingLineup) (game.UpsertResult, error)
}
