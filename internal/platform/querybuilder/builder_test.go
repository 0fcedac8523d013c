package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("game_id", "status").
		From("games").
		Where(Eq("game_date", "2024-01-15"), IsNull("deleted_at")).
		OrderBy("game_id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT game_id, status FROM games WHERE game_date = $1 AND deleted_at IS NULL ORDER BY game_id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "2024-01-15" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InCondition(t *testing.T) {
	query, args, err := Select("game_id").
		From("games").
		Where(In("game_id", []any{"0022300001", "0022300002"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT game_id FROM games WHERE game_id IN ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, _, err := Select("game_id").From("games").Where(In("game_id", nil)).ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT game_id FROM games WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("quarantine").
		Columns("game_id", "endpoint").
		Values("0022300001", "playbyplayv2").
		Suffix("RETURNING game_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO quarantine (game_id, endpoint) VALUES ($1, $2) RETURNING game_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "0022300001" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type upsertTestModel struct {
	GameID string `db:"game_id"`
	Status string `db:"status"`
	Season string `db:"season"`
}

func TestUpsertModels_DiffAware(t *testing.T) {
	query, args, err := UpsertModels(UpsertSpec{
		Table:        "games",
		ConflictCols: []string{"game_id"},
		UpdateCols:   []string{"status", "season"},
	}, []any{
		upsertTestModel{GameID: "0022300001", Status: "FINAL", Season: "2023-24"},
		upsertTestModel{GameID: "0022300002", Status: "LIVE", Season: "2023-24"},
	})
	if err != nil {
		t.Fatalf("build upsert query: %v", err)
	}

	wantQuery := "INSERT INTO games (game_id, status, season) VALUES ($1, $2, $3), ($4, $5, $6) " +
		"ON CONFLICT (game_id) DO UPDATE SET status = EXCLUDED.status, season = EXCLUDED.season " +
		"WHERE games.status IS DISTINCT FROM EXCLUDED.status OR games.season IS DISTINCT FROM EXCLUDED.season " +
		"RETURNING (xmax = 0) AS inserted"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpsertModels_NoUpdateColumns(t *testing.T) {
	query, _, err := UpsertModels(UpsertSpec{
		Table:        "game_id_crosswalk",
		ConflictCols: []string{"game_id"},
	}, []any{upsertTestModel{GameID: "0022300001"}})
	if err != nil {
		t.Fatalf("build upsert query: %v", err)
	}
	want := "INSERT INTO game_id_crosswalk (game_id, status, season) VALUES ($1, $2, $3) " +
		"ON CONFLICT (game_id) DO NOTHING RETURNING (xmax = 0) AS inserted"
	if query != want {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", want, query)
	}
}
