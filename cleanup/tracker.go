package cleanup

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovekit/grove/fsio"
)

// DefaultStatsFilename is the usage stats file under the tracker directory.
const DefaultStatsFilename = "worktree_stats.json"

// UsageRecord holds the persisted access statistics for one worktree.
// The file format is a flat JSON map of worktree path to record.
type UsageRecord struct {
	Branch       string    `json:"branch_name"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccessed time.Time `json:"last_accessed"`
	AccessCount  int       `json:"access_count"`
}

// UsageTracker persists worktree access statistics. Every mutating method
// rewrites the file on disk before returning; a load failure yields an
// empty tracker.
type UsageTracker struct {
	path string

	mu      sync.Mutex
	records map[string]UsageRecord
}

// NewUsageTracker creates a tracker backed by the given file, defaulting
// to ~/.grove/worktree_stats.json.
func NewUsageTracker(path string) (*UsageTracker, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".grove", DefaultStatsFilename)
	}

	t := &UsageTracker{path: path}
	t.records = t.load()
	return t, nil
}

func (t *UsageTracker) load() map[string]UsageRecord {
	data, err := fsio.ReadFileShared(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("usage stats unreadable, starting fresh", "path", t.path, "error", err)
		}
		return make(map[string]UsageRecord)
	}

	var records map[string]UsageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Debug("usage stats corrupt, starting fresh", "path", t.path, "error", err)
		return make(map[string]UsageRecord)
	}
	if records == nil {
		records = make(map[string]UsageRecord)
	}
	return records
}

func (t *UsageTracker) save() error {
	data, err := json.MarshalIndent(t.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode usage stats: %w", err)
	}
	return fsio.WriteFileAtomic(t.path, data, 0o600)
}

// RecordAccess records an access event for a worktree, creating the
// record on first access.
func (t *UsageTracker) RecordAccess(worktreePath, branch string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	rec, ok := t.records[worktreePath]
	if !ok {
		rec = UsageRecord{
			Branch:    branch,
			CreatedAt: now,
		}
	}
	rec.LastAccessed = now
	rec.AccessCount++
	if branch != "" {
		rec.Branch = branch
	}
	t.records[worktreePath] = rec

	return t.save()
}

// Stats returns the usage record for a worktree path.
func (t *UsageTracker) Stats(worktreePath string) (UsageRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[worktreePath]
	return rec, ok
}

// All returns a copy of every tracked record, keyed by worktree path.
func (t *UsageTracker) All() map[string]UsageRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]UsageRecord, len(t.records))
	for k, v := range t.records {
		out[k] = v
	}
	return out
}

// Remove deletes the record for a worktree path. Removing an untracked
// path is a no-op.
func (t *UsageTracker) Remove(worktreePath string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.records[worktreePath]; !ok {
		return nil
	}
	delete(t.records, worktreePath)
	return t.save()
}

// LastAccessed returns the last recorded access time for a worktree path.
func (t *UsageTracker) LastAccessed(worktreePath string) (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[worktreePath]
	if !ok {
		return time.Time{}, false
	}
	return rec.LastAccessed, true
}
