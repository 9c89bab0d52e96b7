// Package ai defines the coding-assistant tools a worktree session can
// run and picks an appropriate model for the task at hand.
package ai
