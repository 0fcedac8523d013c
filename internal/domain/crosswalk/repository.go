package crosswalk

import (
	"context"

	"github.com/hooplake/hooplake/internal/domain/game"
)

type Repository interface {
	UpsertMany(ctx context.Context, rows []Row) (game.UpsertResult, error)
}
