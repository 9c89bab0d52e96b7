// Package git wraps the git CLI for repository and worktree management.
//
// All operations go through a Context bound to a repository root. Commands
// execute via a CommandRunner, which tests replace with a MockRunner to
// script git's responses without touching a real repository.
//
// The package covers the worktree lifecycle (list, find, create, delete,
// prune), branch sanitization for worktree directory naming, and a
// SyncService that pulls upstream changes into every worktree with
// optional auto-stashing.
package git
