// Package project detects a repository's project type and package
// manager from marker files, and prepares fresh worktrees: dependency
// installation and .env propagation with path rewriting.
package project
