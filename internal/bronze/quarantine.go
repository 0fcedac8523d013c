package bronze

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
)

// Quarantine is the append-only log of failed (game, endpoint) pairs. Lines
// are never rewritten or truncated.
type Quarantine struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func NewQuarantine(path string) *Quarantine {
	return &Quarantine{path: path, now: time.Now}
}

// QuarantinePath is the single append-only quarantine file under a Bronze
// root, shared by every harvested date.
func QuarantinePath(root string) string {
	return filepath.Join(root, "ops", "quarantine_game_ids.txt")
}

// Append writes one "{iso_ts} {game_id} {endpoint} {error}" line.
func (q *Quarantine) Append(gameID, endpoint string, cause error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(q.path), 0o755); err != nil {
		return crerr.Wrapf(err, "create quarantine dir for %s", q.path)
	}
	f, err := os.OpenFile(q.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return crerr.Wrapf(err, "open quarantine %s", q.path)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s %s %v\n", q.now().UTC().Format(time.RFC3339), gameID, endpoint, cause)
	if _, err := f.WriteString(line); err != nil {
		return crerr.Wrapf(err, "append quarantine %s", q.path)
	}
	return nil
}
