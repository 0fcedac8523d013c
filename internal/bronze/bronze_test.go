package bronze

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "2024-01-15", "0022300123", "playbyplayv2.json")

	result, err := WriteJSON(path, map[string]any{"resource": "playbyplayv2"})
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if int64(len(data)) != result.Bytes {
		t.Errorf("bytes = %d, file has %d", result.Bytes, len(data))
	}
	sum := sha1.Sum(data)
	if hex.EncodeToString(sum[:]) != result.SHA1 {
		t.Error("sha1 mismatch")
	}
	if result.Gz {
		t.Error("small payload should not be gzipped")
	}
	if !strings.Contains(string(data), "\n") {
		t.Error("payload should be pretty-printed")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestWriteJSON_GzipsLargePayloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.json")

	big := map[string]any{"blob": strings.Repeat("abcdefgh", 1<<18)}
	result, err := WriteJSON(path, big)
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !result.Gz {
		t.Fatal("payload over 1 MiB should be gzipped")
	}
	if _, err := os.Stat(path + ".gz"); err != nil {
		t.Fatalf("gzip sibling missing: %v", err)
	}
}

func TestManifestStore_MergeAndSummary(t *testing.T) {
	dir := t.TempDir()
	var store ManifestStore

	_, err := store.Update(dir, "2024-01-15", GameRecord{
		GameID: "0022300123",
		Endpoints: map[string]EndpointRecord{
			"boxscoresummaryv2": {Bytes: 1000, SHA1: "aa", OK: true},
		},
	})
	if err != nil {
		t.Fatalf("first update: %v", err)
	}

	manifest, err := store.Update(dir, "2024-01-15", GameRecord{
		GameID: "0022300123",
		Endpoints: map[string]EndpointRecord{
			"playbyplayv2": {Bytes: 2000, SHA1: "bb", OK: true},
		},
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	if len(manifest.Games) != 1 {
		t.Fatalf("games = %d, want merged single game", len(manifest.Games))
	}
	if len(manifest.Games[0].Endpoints) != 2 {
		t.Fatalf("endpoints = %d, want 2", len(manifest.Games[0].Endpoints))
	}
	want := Summary{Games: 1, OKGames: 1, FailedGames: 0, TotalBytes: 3000}
	if manifest.Summary != want {
		t.Fatalf("summary = %+v, want %+v", manifest.Summary, want)
	}

	// A second game with a failed endpoint counts as failed.
	manifest, err = store.Update(dir, "2024-01-15", GameRecord{
		GameID: "0022300124",
		Endpoints: map[string]EndpointRecord{
			"playbyplayv2": {OK: false},
		},
		Errors: []string{"playbyplayv2: upstream 500"},
	})
	if err != nil {
		t.Fatalf("third update: %v", err)
	}
	want = Summary{Games: 2, OKGames: 1, FailedGames: 1, TotalBytes: 3000}
	if manifest.Summary != want {
		t.Fatalf("summary = %+v, want %+v", manifest.Summary, want)
	}

	// Survives a round trip through disk.
	reread, err := store.Read(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if reread.Summary != want {
		t.Fatalf("reread summary = %+v, want %+v", reread.Summary, want)
	}
}

func TestQuarantine_AppendOnly(t *testing.T) {
	dir := t.TempDir()
	q := NewQuarantine(filepath.Join(dir, "ops", "quarantine_game_ids.txt"))
	q.now = func() time.Time {
		return time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)
	}

	if err := q.Append("0022300123", "playbyplayv2", errors.New("upstream 500")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := q.Append("0022300124", "shotchartdetail", errors.New("timeout")); err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "ops", "quarantine_game_ids.txt"))
	if err != nil {
		t.Fatalf("read quarantine: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lines[0] != "2024-01-15T18:30:00Z 0022300123 playbyplayv2 upstream 500" {
		t.Fatalf("unexpected line: %q", lines[0])
	}
}

func TestReader(t *testing.T) {
	root := t.TempDir()
	gameDir := filepath.Join(root, "2024-01-15", "0022300123")
	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "not-a-date"), 0o755); err != nil {
		t.Fatal(err)
	}
	// A truncated game ID is not a harvested game directory.
	if err := os.MkdirAll(filepath.Join(root, "2024-01-15", "002230012"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(gameDir, "playbyplayv2.json"), []byte(`{"resource":"playbyplayv2"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(gameDir, "shotchartdetail.json"), []byte(`{corrupt`), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewReader(root)
	if dates := r.Dates(); len(dates) != 1 || dates[0] != "2024-01-15" {
		t.Fatalf("dates = %v", dates)
	}
	if games := r.Games("2024-01-15"); len(games) != 1 || games[0] != "0022300123" {
		t.Fatalf("games = %v", games)
	}
	if data := r.ReadEndpoint("2024-01-15", "0022300123", "playbyplayv2"); data == nil {
		t.Error("expected playbyplayv2 bytes")
	}
	if data := r.ReadEndpoint("2024-01-15", "0022300123", "shotchartdetail"); data != nil {
		t.Error("corrupt file should read as nil")
	}
	if data := r.ReadEndpoint("2024-01-15", "0022300123", "boxscoresummaryv2"); data != nil {
		t.Error("missing file should read as nil")
	}
}
