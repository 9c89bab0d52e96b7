package status

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grovekit/grove/fsio"
)

// DefaultStatusFilename is the store file under the tracker directory.
const DefaultStatusFilename = "status.json"

// Config configures a Tracker.
type Config struct {
	StoragePath       string // Store location (default ~/.grove/status.json)
	MaxCommandHistory int    // Per-worktree command cap (default 20, min 1)
	StoreCommands     bool   // Record sent commands
	RedactCommands    bool   // Redact secrets before storing
}

// DefaultConfig returns the standard tracker configuration.
func DefaultConfig() Config {
	return Config{
		MaxCommandHistory: 20,
		StoreCommands:     true,
		RedactCommands:    true,
	}
}

// Tracker maintains the persisted activity store. Every mutating method
// rewrites the store on disk before returning; a write failure surfaces
// to the caller, a load failure silently yields an empty store.
type Tracker struct {
	config Config
	path   string
	store  *Store
}

// NewTracker creates a tracker and loads the store from disk.
func NewTracker(config Config) (*Tracker, error) {
	if config.MaxCommandHistory < 1 {
		return nil, fmt.Errorf("max command history must be at least 1, got %d", config.MaxCommandHistory)
	}

	path := config.StoragePath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".grove", DefaultStatusFilename)
	}

	t := &Tracker{config: config, path: path}
	t.store = t.load()
	return t, nil
}

// load reads the store from disk. Any failure (missing file, bad JSON,
// unsupported version) yields a fresh empty store: the file is a cache,
// not a source of truth.
func (t *Tracker) load() *Store {
	data, err := fsio.ReadFileShared(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("status store unreadable, starting fresh", "path", t.path, "error", err)
		}
		return NewStore()
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		slog.Debug("status store corrupt, starting fresh", "path", t.path, "error", err)
		return NewStore()
	}
	if store.Version != StoreVersion && store.Version != "1.0" {
		slog.Debug("status store version unsupported, starting fresh",
			"path", t.path, "version", store.Version)
		return NewStore()
	}
	store.Version = StoreVersion
	if store.Statuses == nil {
		store.Statuses = make(map[string]WorktreeStatus)
	}
	return &store
}

// save rewrites the whole store atomically with owner-only permissions.
func (t *Tracker) save() error {
	data, err := json.MarshalIndent(t.store, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status store: %w", err)
	}
	return fsio.WriteFileAtomic(t.path, data, 0o600)
}

// Get returns the status for a worktree, or nil if untracked.
func (t *Tracker) Get(worktreeName string) *WorktreeStatus {
	return t.store.Get(worktreeName)
}

// All returns every tracked status.
func (t *Tracker) All() []WorktreeStatus {
	return t.store.All()
}

// InitializeStatus starts tracking a worktree, overwriting any existing
// entry for the same name. The new record starts idle.
func (t *Tracker) InitializeStatus(name, path, branch, tmuxSession, aiTool string) (*WorktreeStatus, error) {
	now := time.Now()
	st := WorktreeStatus{
		WorktreeName: name,
		WorktreePath: path,
		Branch:       branch,
		TmuxSession:  tmuxSession,
		AITool:       aiTool,
		Activity:     ActivityIdle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	t.store.Set(st)
	if err := t.save(); err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateTask sets the current task for a tracked worktree. Returns nil
// (and no error) when the worktree is untracked.
func (t *Tracker) UpdateTask(name, task string, activity Activity) (*WorktreeStatus, error) {
	st := t.store.Get(name)
	if st == nil {
		return nil, nil
	}
	if activity == "" {
		activity = ActivityWorking
	}
	st.UpdateTask(task, activity)
	t.store.Set(*st)
	if err := t.save(); err != nil {
		return nil, err
	}
	return st, nil
}

// RecordCommand records a command sent to a worktree's session, redacting
// secrets first. An idle worktree flips to working. Returns nil when the
// target is untracked.
func (t *Tracker) RecordCommand(target, command, source string, paneIndex, windowIndex int) (*WorktreeStatus, error) {
	st := t.store.Get(target)
	if st == nil {
		return nil, nil
	}

	stored := command
	if t.config.RedactCommands {
		stored = RedactSecrets(command)
	}

	if t.config.StoreCommands {
		st.AddCommand(CommandRecord{
			Timestamp:      time.Now(),
			Command:        stored,
			SourceWorktree: source,
			PaneIndex:      paneIndex,
			WindowIndex:    windowIndex,
		}, t.config.MaxCommandHistory)
	}

	if st.Activity == ActivityIdle {
		st.Activity = ActivityWorking
	}

	t.store.Set(*st)
	if err := t.save(); err != nil {
		return nil, err
	}
	return st, nil
}

// MarkCompleted marks a worktree's current task as finished.
func (t *Tracker) MarkCompleted(name string) (*WorktreeStatus, error) {
	st := t.store.Get(name)
	if st == nil {
		return nil, nil
	}
	st.MarkCompleted()
	t.store.Set(*st)
	if err := t.save(); err != nil {
		return nil, err
	}
	return st, nil
}

// MarkIdle marks a worktree as idle and clears its current task.
func (t *Tracker) MarkIdle(name string) (*WorktreeStatus, error) {
	st := t.store.Get(name)
	if st == nil {
		return nil, nil
	}
	st.MarkIdle()
	t.store.Set(*st)
	if err := t.save(); err != nil {
		return nil, err
	}
	return st, nil
}

// SetNotes replaces the notes for a worktree.
func (t *Tracker) SetNotes(name, notes string) (*WorktreeStatus, error) {
	st := t.store.Get(name)
	if st == nil {
		return nil, nil
	}
	st.Notes = notes
	st.UpdatedAt = time.Now()
	t.store.Set(*st)
	if err := t.save(); err != nil {
		return nil, err
	}
	return st, nil
}

// RemoveStatus stops tracking a worktree. Returns true if an entry was
// removed.
func (t *Tracker) RemoveStatus(name string) (bool, error) {
	if !t.store.Remove(name) {
		return false, nil
	}
	if err := t.save(); err != nil {
		return true, err
	}
	return true, nil
}

// Summary aggregates activity counts. With names, only those worktrees
// are included; otherwise every tracked worktree counts.
func (t *Tracker) Summary(names []string) Summary {
	statuses := t.store.All()
	if len(names) > 0 {
		wanted := make(map[string]bool, len(names))
		for _, n := range names {
			wanted[n] = true
		}
		filtered := statuses[:0]
		for _, st := range statuses {
			if wanted[st.WorktreeName] {
				filtered = append(filtered, st)
			}
		}
		statuses = filtered
	}

	summary := Summary{
		Timestamp:        time.Now(),
		TotalWorktrees:   len(statuses),
		WorktreesTracked: len(statuses),
		Statuses:         statuses,
	}
	if len(names) > 0 {
		summary.TotalWorktrees = len(names)
	}

	for _, st := range statuses {
		switch st.Activity {
		case ActivityWorking:
			summary.Active++
		case ActivityIdle:
			summary.Idle++
		case ActivityBlocked:
			summary.Blocked++
		default:
			summary.Unknown++
		}
		summary.TotalCommandsSent += len(st.RecentCommands)

		if summary.MostRecentActivity == nil || st.UpdatedAt.After(*summary.MostRecentActivity) {
			updated := st.UpdatedAt
			summary.MostRecentActivity = &updated
		}
	}
	return summary
}

// CleanupOrphans removes every tracked entry whose name is not in
// validNames, returning the removed names.
func (t *Tracker) CleanupOrphans(validNames []string) ([]string, error) {
	valid := make(map[string]bool, len(validNames))
	for _, n := range validNames {
		valid[n] = true
	}

	var removed []string
	for name := range t.store.Statuses {
		if !valid[name] {
			t.store.Remove(name)
			removed = append(removed, name)
		}
	}

	if len(removed) > 0 {
		if err := t.save(); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// CurrentWorktreeName resolves which tracked worktree contains dir, by
// longest path-prefix match. Empty when dir is in no tracked worktree.
func (t *Tracker) CurrentWorktreeName(dir string) string {
	dir = filepath.Clean(dir)
	var best string
	var bestLen int
	for name, st := range t.store.Statuses {
		root := filepath.Clean(st.WorktreePath)
		if dir == root || strings.HasPrefix(dir, root+string(filepath.Separator)) {
			if len(root) > bestLen {
				best = name
				bestLen = len(root)
			}
		}
	}
	return best
}
