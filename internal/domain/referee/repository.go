package referee

import (
	"context"

	"github.com/hooplake/hooplake/internal/domain/game"
)

type Repository interface {
	UpsertAssignments(ctx context.Context, assignments []Assignment) (game.UpsertResult, error)
	UpsertAlternates(ctx context.Context, alternates []Alternate) (game.UpsertResult, error)
}
