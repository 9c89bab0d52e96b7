// Package status tracks AI-assistant activity per worktree.
//
// A Tracker maintains a JSON store mapping worktree names to activity
// records: current task, recent commands (secrets redacted), notes, and
// timestamps. Every mutation rewrites the whole store atomically; the
// file is a best-effort cache, so load failures yield a fresh empty
// store rather than an error.
package status
