// Package tmux manages terminal multiplexer sessions for worktrees.
//
// Sessions are created detached with one of five fixed pane layouts and an
// optional assistant command launched in the first pane. Session names are
// derived deterministically from worktree names via a configurable prefix,
// so a worktree always maps to the same session.
package tmux
