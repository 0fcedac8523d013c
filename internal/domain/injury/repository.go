package injury

import (
	"context"

	"github.com/hooplake/hooplake/internal/domain/game"
)

type Repository interface {
	UpsertMany(ctx context.Context, statuses []Status) (game.UpsertResult, error)
}
