package game

import "context"

// UpsertResult reports how many rows an upsert actually touched. Re-ingesting
// unchanged data yields Updated == 0.
type UpsertResult struct {
	Inserted int
	Updated  int
}

type Repository interface {
	UpsertMany(ctx context.Context, games []Game) (UpsertResult, error)
	// ExistingGameIDs returns the subset of ids present in the games table.
	ExistingGameIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
}
