package pbp

import (
	"context"

	"github.com/hooplake/hooplake/internal/domain/game"
)

type Repository interface {
	// UpsertMany upserts events in ascending event_idx order, batched
	// internally by the implementation.
	UpsertMany(ctx context.Context, events []Event) (game.UpsertResult, error)
}
