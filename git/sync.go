package git

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// SyncStatus classifies the outcome of syncing one worktree.
type SyncStatus string

const (
	SyncSuccess            SyncStatus = "success"
	SyncUpToDate           SyncStatus = "up_to_date"
	SyncConflicts          SyncStatus = "conflicts"
	SyncNoUpstream         SyncStatus = "no_upstream"
	SyncUncommittedChanges SyncStatus = "uncommitted_changes"
	SyncError              SyncStatus = "error"
)

// SyncResult is the outcome of syncing a single worktree.
type SyncResult struct {
	Worktree string     `json:"worktree"`
	Branch   string     `json:"branch"`
	Status   SyncStatus `json:"status"`
	Behind   int        `json:"behind"`
	Ahead    int        `json:"ahead"`
	Stashed  bool       `json:"stashed"`
	Message  string     `json:"message,omitempty"`
}

// SyncReport aggregates the results of a sync run across worktrees.
type SyncReport struct {
	RunID    string       `json:"run_id"`
	Started  time.Time    `json:"started"`
	Duration string       `json:"duration"`
	Results  []SyncResult `json:"results"`
}

// Succeeded reports whether every worktree synced cleanly or was already
// current.
func (r *SyncReport) Succeeded() bool {
	for _, res := range r.Results {
		if res.Status != SyncSuccess && res.Status != SyncUpToDate {
			return false
		}
	}
	return true
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	Strategy  string // "merge" or "rebase"
	AutoStash bool   // Stash uncommitted changes before pulling
	Remote    string // Remote to fetch (default "origin")
}

// SyncService pulls upstream changes into worktrees, fetching once and
// then updating each worktree against its own upstream branch.
type SyncService struct {
	git *Context
}

// NewSyncService returns a sync service bound to the repository.
func NewSyncService(g *Context) *SyncService {
	return &SyncService{git: g}
}

// SyncAll syncs every worktree in the repository.
func (s *SyncService) SyncAll(opts SyncOptions) (*SyncReport, error) {
	return s.sync(s.git.ListWorktrees(), opts)
}

// SyncOne syncs the single worktree matching identifier.
func (s *SyncService) SyncOne(identifier string, opts SyncOptions) (*SyncReport, error) {
	wt, err := s.git.FindWorktree(identifier)
	if err != nil {
		return nil, err
	}
	return s.sync([]Worktree{*wt}, opts)
}

func (s *SyncService) sync(worktrees []Worktree, opts SyncOptions) (*SyncReport, error) {
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.Strategy == "" {
		opts.Strategy = "merge"
	}

	report := &SyncReport{
		RunID:   gonanoid.Must(8),
		Started: time.Now(),
	}

	// One fetch covers every worktree; they share the object store.
	if err := s.git.Fetch(opts.Remote, true); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", opts.Remote, err)
	}

	for _, wt := range worktrees {
		result := s.syncWorktree(wt, opts)
		slog.Debug("worktree synced",
			"worktree", result.Worktree,
			"status", result.Status,
			"behind", result.Behind,
			"ahead", result.Ahead)
		report.Results = append(report.Results, result)
	}

	report.Duration = time.Since(report.Started).Round(time.Millisecond).String()
	return report, nil
}

func (s *SyncService) syncWorktree(wt Worktree, opts SyncOptions) SyncResult {
	result := SyncResult{Worktree: wt.Name(), Branch: wt.Branch}
	g := s.git.InDir(wt.Path)

	if wt.IsDetached {
		result.Status = SyncNoUpstream
		result.Message = "detached HEAD"
		return result
	}

	upstream, err := g.UpstreamBranch()
	if err != nil {
		if errors.Is(err, ErrNoUpstream) {
			result.Status = SyncNoUpstream
			return result
		}
		result.Status = SyncError
		result.Message = err.Error()
		return result
	}

	ahead, behind, err := g.AheadBehind(upstream)
	if err != nil {
		result.Status = SyncError
		result.Message = err.Error()
		return result
	}
	result.Ahead = ahead
	result.Behind = behind

	if behind == 0 {
		result.Status = SyncUpToDate
		return result
	}

	clean, err := g.IsClean()
	if err != nil {
		result.Status = SyncError
		result.Message = err.Error()
		return result
	}

	if !clean {
		if !opts.AutoStash {
			result.Status = SyncUncommittedChanges
			result.Message = "uncommitted changes; rerun with auto-stash or commit first"
			return result
		}
		if err := g.StashPush(fmt.Sprintf("sync auto-stash %s", wt.Branch)); err != nil {
			result.Status = SyncError
			result.Message = fmt.Sprintf("stash failed: %v", err)
			return result
		}
		result.Stashed = true
	}

	pullOutput, pullErr := g.Pull(opts.Strategy)

	if result.Stashed {
		if popOutput, err := g.StashPop(); err != nil {
			// A failed pop means the restored changes collided with the
			// pulled ones. The stash entry is kept by git, so nothing is
			// lost, but the user has to resolve by hand.
			result.Status = SyncConflicts
			result.Message = fmt.Sprintf("stash pop conflict: %s", firstLine(popOutput))
			return result
		}
	}

	if pullErr != nil {
		if strings.Contains(strings.ToLower(pullOutput), "conflict") {
			result.Status = SyncConflicts
			result.Message = firstLine(pullOutput)
		} else {
			result.Status = SyncError
			result.Message = pullErr.Error()
		}
		return result
	}

	result.Status = SyncSuccess
	return result
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
