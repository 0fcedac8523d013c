package shot

import (
	"context"

	"github.com/hooplake/hooplake/internal/domain/game"
)

type Repository interface {
	UpsertMany(ctx context.Context, events []Event) (game.UpsertResult, error)
}
