package git

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Context manages git operations for a repository and its worktrees.
type Context struct {
	gitRoot string        // Top-level directory of the main checkout
	workDir string        // Working directory for commands (defaults to gitRoot)
	runner  CommandRunner // Command runner (defaults to ExecRunner)
}

// Option configures Context.
type Option func(*Context)

// NewContext creates a git context rooted at the repository containing path.
// Returns ErrNotGitRepo if path is not inside a git repository.
func NewContext(path string, opts ...Option) (*Context, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	g := &Context{
		workDir: absPath,
		runner:  NewExecRunner(),
	}
	for _, opt := range opts {
		opt(g)
	}

	root, err := g.runGit("rev-parse", "--show-toplevel")
	if err != nil {
		return nil, ErrNotGitRepo
	}
	g.gitRoot = root
	g.workDir = root

	return g, nil
}

// WithRunner sets a custom command runner for git operations.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) {
		g.runner = runner
	}
}

// GitRoot returns the top-level directory of the main checkout.
func (g *Context) GitRoot() string {
	return g.gitRoot
}

// ProjectName returns the repository name, taken from the root directory.
func (g *Context) ProjectName() string {
	return filepath.Base(g.gitRoot)
}

// InDir returns a Context that runs commands in dir, typically a worktree.
func (g *Context) InDir(dir string) *Context {
	return &Context{
		gitRoot: g.gitRoot,
		workDir: dir,
		runner:  g.runner,
	}
}

// CurrentBranch returns the branch checked out in the working directory.
func (g *Context) CurrentBranch() (string, error) {
	branch, err := g.runGit("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", &Error{Op: "get current branch", Err: err}
	}
	return branch, nil
}

// BranchExists checks if a local branch exists.
func (g *Context) BranchExists(name string) bool {
	_, err := g.runGit("rev-parse", "--verify", "refs/heads/"+name)
	return err == nil
}

// HeadCommit returns the current HEAD commit SHA.
func (g *Context) HeadCommit() (string, error) {
	sha, err := g.runGit("rev-parse", "HEAD")
	if err != nil {
		return "", &Error{Op: "get HEAD commit", Err: err}
	}
	return sha, nil
}

// Status returns the working tree status in short format.
func (g *Context) Status() (string, error) {
	status, err := g.runGit("status", "--short")
	if err != nil {
		return "", &Error{Op: "status", Err: err}
	}
	return status, nil
}

// IsClean returns true if the working tree has no uncommitted changes.
func (g *Context) IsClean() (bool, error) {
	status, err := g.Status()
	if err != nil {
		return false, err
	}
	return status == "", nil
}

// UpstreamBranch returns the upstream tracking branch for HEAD, e.g.
// "origin/main". Returns ErrNoUpstream when none is configured.
func (g *Context) UpstreamBranch() (string, error) {
	upstream, err := g.runGit("rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		return "", ErrNoUpstream
	}
	return upstream, nil
}

// Fetch fetches updates from the remote. If prune is true, deleted remote
// branches are pruned from the local tracking set.
func (g *Context) Fetch(remote string, prune bool) error {
	args := []string{"fetch", remote}
	if prune {
		args = append(args, "--prune")
	}
	if _, err := g.runGit(args...); err != nil {
		return &Error{Op: "fetch", Err: err}
	}
	return nil
}

// Pull pulls changes from the upstream branch using the given strategy
// ("merge" or "rebase").
func (g *Context) Pull(strategy string) (string, error) {
	args := []string{"pull"}
	if strategy == "rebase" {
		args = append(args, "--rebase")
	}
	output, err := g.runGit(args...)
	if err != nil {
		return output, &Error{Op: "pull", Output: output, Err: err}
	}
	return output, nil
}

// StashPush stashes uncommitted changes with a marker message.
func (g *Context) StashPush(message string) error {
	if _, err := g.runGit("stash", "push", "-m", message); err != nil {
		return &Error{Op: "stash push", Err: err}
	}
	return nil
}

// StashPop restores the most recent stash. The output is returned so
// callers can surface conflict details.
func (g *Context) StashPop() (string, error) {
	output, err := g.runGit("stash", "pop")
	if err != nil {
		return output, &Error{Op: "stash pop", Output: output, Err: err}
	}
	return output, nil
}

// AheadBehind returns how many commits HEAD is ahead of and behind the
// given upstream ref, using rev-list --left-right --count.
func (g *Context) AheadBehind(upstream string) (ahead, behind int, err error) {
	output, err := g.runGit("rev-list", "--left-right", "--count", "HEAD..."+upstream)
	if err != nil {
		return 0, 0, &Error{Op: "count commits", Err: err}
	}
	fields := strings.Fields(output)
	if len(fields) != 2 {
		return 0, 0, &Error{Op: "count commits", Err: fmt.Errorf("unexpected output %q", output)}
	}
	ahead, err = atoiField(fields[0])
	if err != nil {
		return 0, 0, &Error{Op: "count commits", Err: err}
	}
	behind, err = atoiField(fields[1])
	if err != nil {
		return 0, 0, &Error{Op: "count commits", Err: err}
	}
	return ahead, behind, nil
}

func atoiField(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, fmt.Errorf("parse count %q: %w", s, err)
	}
	return n, nil
}

// HasUnpushedCommits reports whether HEAD has commits missing from its
// upstream. Branches without an upstream count as unpushed.
func (g *Context) HasUnpushedCommits() bool {
	upstream, err := g.UpstreamBranch()
	if err != nil {
		return true
	}
	ahead, _, err := g.AheadBehind(upstream)
	if err != nil {
		return true
	}
	return ahead > 0
}

// GetRemoteURL returns the URL of the specified remote.
func (g *Context) GetRemoteURL(remote string) (string, error) {
	url, err := g.runGit("remote", "get-url", remote)
	if err != nil {
		return "", &Error{Op: "get remote URL", Err: err}
	}
	return url, nil
}

// runGit executes a git command and returns stdout.
func (g *Context) runGit(args ...string) (string, error) {
	return g.runner.Run(g.workDir, "git", args...)
}

var branchNameStrip = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// SanitizeBranchName converts a branch name to a safe directory name
// component: slashes and dots become hyphens, then everything outside
// [A-Za-z0-9_-] is stripped.
func SanitizeBranchName(branch string) string {
	safe := strings.NewReplacer("/", "-", ".", "-").Replace(branch)
	return branchNameStrip.ReplaceAllString(safe, "")
}
