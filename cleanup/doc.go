// Package cleanup tracks worktree usage and removes stale worktrees.
//
// Core types:
//   - UsageTracker: Persists per-worktree access statistics
//   - Service: Identifies and removes stale worktrees
//   - Report: Result of a cleanup run
//
// A worktree is stale when its last recorded access is older than the
// configured threshold. Worktrees with uncommitted changes or unpushed
// commits are protected from cleanup unless forced.
//
// Example usage:
//
//	tracker, _ := cleanup.NewUsageTracker("")
//	svc, _ := cleanup.NewService(gitCtx, tracker, cleanup.DefaultConfig())
//	report := svc.Cleanup(gitCtx.ListWorktrees(), cleanup.Options{DryRun: true})
package cleanup
