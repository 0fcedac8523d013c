package bronze

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

const manifestFile = "manifest.json"

// EndpointRecord is the harvest result for one endpoint of one game.
type EndpointRecord struct {
	Bytes int64  `json:"bytes"`
	SHA1  string `json:"sha1"`
	Gz    bool   `json:"gz"`
	OK    bool   `json:"ok"`
}

// GameRecord is the per-game slice of the manifest.
type GameRecord struct {
	GameID    string                    `json:"game_id"`
	Teams     []string                  `json:"teams,omitempty"`
	Endpoints map[string]EndpointRecord `json:"endpoints"`
	Errors    []string                  `json:"errors"`
}

type Summary struct {
	Games       int   `json:"games"`
	OKGames     int   `json:"ok_games"`
	FailedGames int   `json:"failed_games"`
	TotalBytes  int64 `json:"total_bytes"`
}

// Manifest is the per-date index of harvest results.
type Manifest struct {
	Date    string       `json:"date"`
	Games   []GameRecord `json:"games"`
	Summary Summary      `json:"summary"`
}

// ManifestStore serializes manifest updates for one harvest run. The manifest
// file has a single writer at a time.
type ManifestStore struct {
	mu sync.Mutex
}

// Update merges record into {dateDir}/manifest.json: endpoint submaps are
// concatenated, errors appended, and the summary recomputed.
func (s *ManifestStore) Update(dateDir, date string, record GameRecord) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	manifest, err := readManifest(dateDir)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		manifest = &Manifest{Date: date}
	}

	mergeGameRecord(manifest, record)
	manifest.Summary = computeSummary(manifest)

	if err := writeManifest(dateDir, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Read loads the manifest for a date dir, or nil when absent.
func (s *ManifestStore) Read(dateDir string) (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readManifest(dateDir)
}

func mergeGameRecord(manifest *Manifest, record GameRecord) {
	for i := range manifest.Games {
		existing := &manifest.Games[i]
		if existing.GameID != record.GameID {
			continue
		}
		if existing.Endpoints == nil {
			existing.Endpoints = make(map[string]EndpointRecord, len(record.Endpoints))
		}
		for name, ep := range record.Endpoints {
			existing.Endpoints[name] = ep
		}
		existing.Errors = append(existing.Errors, record.Errors...)
		if len(record.Teams) > 0 {
			existing.Teams = record.Teams
		}
		return
	}

	if record.Endpoints == nil {
		record.Endpoints = make(map[string]EndpointRecord)
	}
	if record.Errors == nil {
		record.Errors = []string{}
	}
	manifest.Games = append(manifest.Games, record)
}

// computeSummary counts a game as OK when it has at least one OK endpoint and
// no recorded errors.
func computeSummary(manifest *Manifest) Summary {
	summary := Summary{Games: len(manifest.Games)}
	for _, g := range manifest.Games {
		okEndpoints := 0
		for _, ep := range g.Endpoints {
			if ep.OK {
				okEndpoints++
			}
			summary.TotalBytes += ep.Bytes
		}
		if okEndpoints >= 1 && len(g.Errors) == 0 {
			summary.OKGames++
		} else {
			summary.FailedGames++
		}
	}
	return summary
}

func readManifest(dateDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dateDir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, crerr.Wrapf(err, "read manifest in %s", dateDir)
	}
	var manifest Manifest
	if err := sonic.Unmarshal(data, &manifest); err != nil {
		return nil, crerr.Wrapf(err, "decode manifest in %s", dateDir)
	}
	return &manifest, nil
}

func writeManifest(dateDir string, manifest *Manifest) error {
	data, err := sonic.ConfigStd.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return crerr.Wrap(err, "encode manifest")
	}
	return writeAtomic(filepath.Join(dateDir, manifestFile), data)
}
