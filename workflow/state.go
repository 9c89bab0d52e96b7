package workflow

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/grovekit/grove/tmux"
)

// State is the shared state flowing through the create and delete
// pipelines. Nodes receive it by value and return the updated copy.
type State struct {
	// Identification
	RunID string `json:"run_id"`

	// Request
	Branch     string `json:"branch"`
	BaseBranch string `json:"base_branch,omitempty"`
	TargetPath string `json:"target_path,omitempty"`
	Force      bool   `json:"force,omitempty"`

	// Session configuration
	Layout      tmux.Layout `json:"layout,omitempty"`
	PaneCount   int         `json:"pane_count,omitempty"`
	AITool      string      `json:"ai_tool,omitempty"`
	AutoStartAI bool        `json:"auto_start_ai,omitempty"`

	// Results
	WorktreeName string `json:"worktree_name,omitempty"`
	WorktreePath string `json:"worktree_path,omitempty"`
	SessionName  string `json:"session_name,omitempty"`
	Deleted      bool   `json:"deleted,omitempty"`

	// Outcome tracking
	Warnings []string                 `json:"warnings,omitempty"`
	Timings  map[string]time.Duration `json:"timings,omitempty"`
	Started  time.Time                `json:"started"`
	Error    string                   `json:"error,omitempty"`
}

// NewState creates pipeline state for a branch.
func NewState(branch string) State {
	return State{
		RunID:   gonanoid.Must(8),
		Branch:  branch,
		Timings: make(map[string]time.Duration),
		Started: time.Now(),
	}
}

// WithBaseBranch sets the base branch for worktree creation.
func (s State) WithBaseBranch(base string) State {
	s.BaseBranch = base
	return s
}

// WithTargetPath overrides the generated worktree location.
func (s State) WithTargetPath(path string) State {
	s.TargetPath = path
	return s
}

// WithForce allows replacing an existing worktree.
func (s State) WithForce(force bool) State {
	s.Force = force
	return s
}

// WithSession configures the tmux session created for the worktree.
func (s State) WithSession(layout tmux.Layout, paneCount int) State {
	s.Layout = layout
	s.PaneCount = paneCount
	return s
}

// WithAITool configures the AI assistant launched in the session.
func (s State) WithAITool(tool string, autoStart bool) State {
	s.AITool = tool
	s.AutoStartAI = autoStart
	return s
}

// ForWorktree pre-resolves the worktree for the delete pipeline, which
// needs the name and path before the worktree itself is removed.
func (s State) ForWorktree(name, path string) State {
	s.WorktreeName = name
	s.WorktreePath = path
	return s
}

// AddWarning records a non-fatal failure.
func (s *State) AddWarning(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// SetError records a fatal failure.
func (s *State) SetError(err error) {
	if err != nil {
		s.Error = err.Error()
	}
}

// HasError returns true if a fatal failure was recorded.
func (s State) HasError() bool {
	return s.Error != ""
}

// recordTiming stores how long a node took. The map is shared across
// state copies, so updates survive the value receiver.
func (s State) recordTiming(node string, start time.Time) {
	if s.Timings != nil {
		s.Timings[node] = time.Since(start)
	}
}

// Duration returns the total elapsed time since the pipeline started.
func (s State) Duration() time.Duration {
	return time.Since(s.Started)
}

// Summary returns a one-line human-readable summary.
func (s State) Summary() string {
	switch {
	case s.Error != "":
		return fmt.Sprintf("run %s failed: %s", s.RunID, s.Error)
	case s.Deleted:
		return fmt.Sprintf("run %s deleted worktree %s (%d warnings)",
			s.RunID, s.WorktreeName, len(s.Warnings))
	default:
		return fmt.Sprintf("run %s created worktree %s at %s (%d warnings)",
			s.RunID, s.WorktreeName, s.WorktreePath, len(s.Warnings))
	}
}
