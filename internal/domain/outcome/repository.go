package outcome

import (
	"context"

	"github.com/hooplake/hooplake/internal/domain/game"
)

type Repository interface {
	UpsertMany(ctx context.Context, outcomes []Outcome) (game.UpsertResult, error)
}
