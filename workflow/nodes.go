package workflow

import (
	"fmt"
	"time"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"

	"github.com/grovekit/grove/ai"
	"github.com/grovekit/grove/git"
	"github.com/grovekit/grove/notify"
	"github.com/grovekit/grove/tmux"
)

// CreateWorktreeNode creates the git worktree. This is the primary
// operation of the create pipeline: its failure aborts the run.
//
// Prerequisites: state.Branch must be set
// Updates: state.WorktreeName, state.WorktreePath
func CreateWorktreeNode(ctx flowgraph.Context, state State) (State, error) {
	g := Git(ctx)
	if g == nil {
		return state, fmt.Errorf("git context not configured")
	}
	if state.Branch == "" {
		return state, fmt.Errorf("branch required")
	}

	start := time.Now()
	wt, err := g.CreateWorktree(state.Branch, git.CreateOptions{
		BaseBranch: state.BaseBranch,
		Path:       state.TargetPath,
		Force:      state.Force,
	})
	if err != nil {
		state.SetError(err)
		return state, err
	}

	state.WorktreeName = wt.Name()
	state.WorktreePath = wt.Path
	state.recordTiming("create-worktree", start)
	return state, nil
}

// SetupEnvNode prepares the worktree's development environment. Failures
// become warnings and an env_setup_failed notification; the worktree
// stays usable either way.
//
// Prerequisites: state.WorktreePath must be set
func SetupEnvNode(ctx flowgraph.Context, state State) (State, error) {
	preparer := Env(ctx)
	if preparer == nil {
		return state, nil
	}

	start := time.Now()
	if err := preparer.PrepareWorktree(state.WorktreePath); err != nil {
		state.AddWarning("environment setup failed: %v", err)
		if n := notify.NotifierFromContext(ctx); n != nil {
			_ = n.Notify(ctx, notify.Event{
				Type:      notify.EventEnvSetupFailed,
				RunID:     state.RunID,
				Worktree:  state.WorktreeName,
				Branch:    state.Branch,
				Message:   err.Error(),
				Severity:  notify.SeverityWarning,
				Timestamp: time.Now(),
			})
		}
		return state, nil
	}
	state.recordTiming("setup-env", start)
	return state, nil
}

// CreateSessionNode creates the tmux session for the worktree and
// optionally types the AI assistant launch command into the first pane.
// Failures become warnings.
//
// Prerequisites: state.WorktreeName, state.WorktreePath must be set
// Updates: state.SessionName
func CreateSessionNode(ctx flowgraph.Context, state State) (State, error) {
	tm := Tmux(ctx)
	if tm == nil {
		return state, nil
	}

	cfg := tmux.SessionConfig{
		Name:      tm.SessionName(state.WorktreeName),
		WorkDir:   state.WorktreePath,
		Layout:    state.Layout,
		PaneCount: state.PaneCount,
	}
	if state.AutoStartAI {
		tool, err := ai.ParseTool(state.AITool)
		if err != nil {
			state.AddWarning("unknown AI tool %q, session starts bare", state.AITool)
		} else {
			cfg.StartCommand = ai.LaunchCommand(tool, ai.TaskImplement)
		}
	}

	start := time.Now()
	info, err := tm.CreateSession(cfg)
	if err != nil {
		state.AddWarning("tmux session not created: %v", err)
		return state, nil
	}

	state.SessionName = info.Name
	state.recordTiming("create-session", start)
	return state, nil
}

// InitStatusNode registers the worktree in the activity store. Failures
// become warnings.
//
// Prerequisites: state.WorktreeName must be set
func InitStatusNode(ctx flowgraph.Context, state State) (State, error) {
	tracker := Tracker(ctx)
	if tracker == nil {
		return state, nil
	}

	_, err := tracker.InitializeStatus(
		state.WorktreeName, state.WorktreePath, state.Branch,
		state.SessionName, state.AITool,
	)
	if err != nil {
		state.AddWarning("status tracking unavailable: %v", err)
	}
	return state, nil
}

// NotifyNode announces the pipeline outcome. If no notifier is
// configured this is a no-op; notification errors never fail the run.
func NotifyNode(ctx flowgraph.Context, state State) (State, error) {
	n := notify.NotifierFromContext(ctx)
	if n == nil {
		return state, nil
	}

	event := notify.Event{
		RunID:     state.RunID,
		Worktree:  state.WorktreeName,
		Branch:    state.Branch,
		Timestamp: time.Now(),
		Metadata:  buildMetadata(state),
	}

	if state.Deleted {
		event.Type = notify.EventWorktreeDeleted
		event.Message = fmt.Sprintf("worktree %s deleted", state.WorktreeName)
	} else {
		event.Type = notify.EventWorktreeCreated
		event.Message = fmt.Sprintf("worktree %s created at %s", state.WorktreeName, state.WorktreePath)
	}

	if len(state.Warnings) > 0 {
		event.Severity = notify.SeverityWarning
	} else {
		event.Severity = notify.SeverityInfo
	}

	_ = n.Notify(ctx, event)
	return state, nil
}

// KillSessionNode terminates the worktree's tmux session, if one runs.
// Failures become warnings so the delete pipeline continues.
//
// Prerequisites: state.WorktreeName must be set
func KillSessionNode(ctx flowgraph.Context, state State) (State, error) {
	tm := Tmux(ctx)
	if tm == nil {
		return state, nil
	}

	name := tm.SessionName(state.WorktreeName)
	if !tm.HasSession(name) {
		return state, nil
	}
	if err := tm.KillSession(name); err != nil {
		state.AddWarning("tmux session not killed: %v", err)
		return state, nil
	}
	state.SessionName = name
	return state, nil
}

// RemoveStatusNode drops the worktree from the activity store. Failures
// become warnings.
//
// Prerequisites: state.WorktreeName must be set
func RemoveStatusNode(ctx flowgraph.Context, state State) (State, error) {
	tracker := Tracker(ctx)
	if tracker == nil {
		return state, nil
	}

	if _, err := tracker.RemoveStatus(state.WorktreeName); err != nil {
		state.AddWarning("status entry not removed: %v", err)
	}
	return state, nil
}

// DeleteWorktreeNode removes the git worktree. This is the primary
// operation of the delete pipeline: its failure aborts the run.
//
// Prerequisites: state.WorktreeName must be set
// Updates: state.WorktreePath, state.Deleted
func DeleteWorktreeNode(ctx flowgraph.Context, state State) (State, error) {
	g := Git(ctx)
	if g == nil {
		return state, fmt.Errorf("git context not configured")
	}
	if state.WorktreeName == "" {
		return state, fmt.Errorf("worktree name required")
	}

	start := time.Now()
	path, err := g.DeleteWorktree(state.WorktreeName, state.Force)
	if err != nil {
		state.SetError(err)
		return state, err
	}

	state.WorktreePath = path
	state.Deleted = true
	state.recordTiming("delete-worktree", start)
	return state, nil
}

// buildMetadata assembles notification metadata from state.
func buildMetadata(state State) map[string]any {
	meta := make(map[string]any)

	if state.WorktreePath != "" {
		meta["path"] = state.WorktreePath
	}
	if state.SessionName != "" {
		meta["session"] = state.SessionName
	}
	if len(state.Warnings) > 0 {
		meta["warnings"] = state.Warnings
	}
	meta["duration"] = state.Duration().String()

	return meta
}
