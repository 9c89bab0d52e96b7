package cleanup

import (
	"fmt"
	"os"
	"sort"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/grovekit/grove/git"
)

// Config configures the cleanup service.
type Config struct {
	StaleThresholdDays int  // Age after which a worktree is stale (default 14, min 1)
	ProtectUncommitted bool // Never delete worktrees with uncommitted changes
	ProtectUnpushed    bool // Never delete worktrees with unpushed commits
}

// DefaultConfig returns the standard cleanup configuration.
func DefaultConfig() Config {
	return Config{
		StaleThresholdDays: 14,
		ProtectUncommitted: true,
		ProtectUnpushed:    true,
	}
}

// WorktreeStats describes one worktree's usage and protection state.
type WorktreeStats struct {
	Path                  string    `json:"worktree_path"`
	Branch                string    `json:"branch_name"`
	CreatedAt             time.Time `json:"created_at"`
	LastAccessed          time.Time `json:"last_accessed"`
	AccessCount           int       `json:"access_count"`
	HasUncommittedChanges bool      `json:"has_uncommitted_changes"`
	HasUnpushedCommits    bool      `json:"has_unpushed_commits"`
}

// Report summarizes one cleanup run.
type Report struct {
	RunID         string    `json:"run_id"`
	Timestamp     time.Time `json:"timestamp"`
	DryRun        bool      `json:"dry_run"`
	ThresholdDays int       `json:"stale_threshold_days"`
	Scanned       int       `json:"worktrees_scanned"`
	Stale         int       `json:"stale_worktrees_found"`
	Cleaned       int       `json:"worktrees_cleaned"`
	Skipped       int       `json:"worktrees_skipped"`
	Errors        []string  `json:"errors,omitempty"`
	CleanedPaths  []string  `json:"cleaned_paths,omitempty"`
	SkippedPaths  []string  `json:"skipped_paths,omitempty"`
}

// Options controls a single cleanup run.
type Options struct {
	DryRun        bool // Report what would be deleted without deleting
	ThresholdDays int  // Override the configured staleness threshold
	Force         bool // Ignore protection rules
}

// Service identifies and removes stale worktrees.
type Service struct {
	git     *git.Context
	tracker *UsageTracker
	config  Config
	now     func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source (for tests).
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a cleanup service.
func NewService(g *git.Context, tracker *UsageTracker, config Config, opts ...ServiceOption) (*Service, error) {
	if config.StaleThresholdDays < 1 {
		return nil, fmt.Errorf("stale threshold must be at least 1 day, got %d", config.StaleThresholdDays)
	}

	s := &Service{
		git:     g,
		tracker: tracker,
		config:  config,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StaleWorktrees returns the worktrees whose last access is older than
// the threshold. The main worktree is never stale. A zero thresholdDays
// uses the configured default.
func (s *Service) StaleWorktrees(worktrees []git.Worktree, thresholdDays int) []WorktreeStats {
	if thresholdDays <= 0 {
		thresholdDays = s.config.StaleThresholdDays
	}
	cutoff := s.now().AddDate(0, 0, -thresholdDays)

	var stale []WorktreeStats
	for _, wt := range worktrees {
		if wt.IsMain {
			continue
		}
		stats := s.statsFor(wt)
		if stats == nil {
			continue
		}
		if stats.LastAccessed.Before(cutoff) {
			stale = append(stale, *stats)
		}
	}
	return stale
}

// statsFor builds the stats for one worktree, falling back to the
// directory's modification time when no usage record exists. Returns nil
// when the worktree directory is gone.
func (s *Service) statsFor(wt git.Worktree) *WorktreeStats {
	info, err := os.Stat(wt.Path)
	if err != nil {
		return nil
	}

	stats := WorktreeStats{
		Path:   wt.Path,
		Branch: wt.Branch,
	}
	if rec, ok := s.tracker.Stats(wt.Path); ok {
		stats.CreatedAt = rec.CreatedAt
		stats.LastAccessed = rec.LastAccessed
		stats.AccessCount = rec.AccessCount
		if rec.Branch != "" {
			stats.Branch = rec.Branch
		}
	} else {
		stats.CreatedAt = info.ModTime()
		stats.LastAccessed = info.ModTime()
	}

	inTree := s.git.InDir(wt.Path)
	clean, err := inTree.IsClean()
	// A git failure counts as dirty so protection errs on the safe side.
	stats.HasUncommittedChanges = err != nil || !clean
	stats.HasUnpushedCommits = inTree.HasUnpushedCommits()

	return &stats
}

// protectionReason returns why a worktree must not be deleted, or "".
func (s *Service) protectionReason(stats WorktreeStats) string {
	if s.config.ProtectUncommitted && stats.HasUncommittedChanges {
		return "has uncommitted changes"
	}
	if s.config.ProtectUnpushed && stats.HasUnpushedCommits {
		return "has unpushed commits"
	}
	return ""
}

// Cleanup deletes stale worktrees, honoring protection rules and dry-run
// mode. Deletion failures are collected in the report rather than
// aborting the run.
func (s *Service) Cleanup(worktrees []git.Worktree, opts Options) *Report {
	threshold := opts.ThresholdDays
	if threshold <= 0 {
		threshold = s.config.StaleThresholdDays
	}
	stale := s.StaleWorktrees(worktrees, threshold)

	report := &Report{
		RunID:         gonanoid.Must(8),
		Timestamp:     s.now(),
		DryRun:        opts.DryRun,
		ThresholdDays: threshold,
		Scanned:       len(worktrees),
		Stale:         len(stale),
	}

	for _, stats := range stale {
		if reason := s.protectionReason(stats); reason != "" && !opts.Force {
			report.Skipped++
			report.SkippedPaths = append(report.SkippedPaths, fmt.Sprintf("%s (%s)", stats.Path, reason))
			continue
		}

		if opts.DryRun {
			report.Cleaned++
			report.CleanedPaths = append(report.CleanedPaths, stats.Path)
			continue
		}

		if _, err := s.git.DeleteWorktree(stats.Path, true); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("delete %s: %v", stats.Path, err))
			continue
		}
		if err := s.tracker.Remove(stats.Path); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("remove stats for %s: %v", stats.Path, err))
		}
		report.Cleaned++
		report.CleanedPaths = append(report.CleanedPaths, stats.Path)
	}

	return report
}

// UsageReport returns stats for every existing worktree, oldest access
// first.
func (s *Service) UsageReport(worktrees []git.Worktree) []WorktreeStats {
	var out []WorktreeStats
	for _, wt := range worktrees {
		if stats := s.statsFor(wt); stats != nil {
			out = append(out, *stats)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastAccessed.Before(out[j].LastAccessed)
	})
	return out
}
