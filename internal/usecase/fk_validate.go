package usecase

import (
	"context"
	"sort"

	"github.com/hooplake/hooplake/internal/domain/game"
)

// partitionByParentGame splits child rows by whether their games row exists.
// A batch carrying an orphan game id degrades to the valid subset instead of
// failing the whole insert on the FK constraint.
func partitionByParentGame[T any](ctx context.Context, games game.Repository, records []T, gameID func(T) string) (valid []T, missing []string, err error) {
	if len(records) == 0 || games == nil {
		return records, nil, nil
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0, 4)
	for _, rec := range records {
		id := gameID(rec)
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	existing, err := games.ExistingGameIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	if len(existing) == len(seen) {
		return records, nil, nil
	}

	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)

	valid = make([]T, 0, len(records))
	for _, rec := range records {
		if _, ok := existing[gameID(rec)]; ok {
			valid = append(valid, rec)
		}
	}
	return valid, missing, nil
}

func (s *LoadService) logOrphanDrops(ctx context.Context, table string, missing []string, dropped int) {
	if len(missing) == 0 {
		return
	}
	s.logger.WarnContext(ctx, "dropped child rows with no parent game",
		"table", table, "missing_game_ids", missing, "dropped", dropped)
}
