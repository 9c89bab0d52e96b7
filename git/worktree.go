package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DetachedBranch is the branch placeholder for a worktree with a
// detached HEAD.
const DetachedBranch = "(detached)"

// Worktree represents one checked-out working copy of the repository.
// Records are re-derived from git on every query, never mutated in place.
type Worktree struct {
	Path       string `json:"path"`        // Absolute filesystem location
	Branch     string `json:"branch"`      // Branch name, or DetachedBranch
	HeadCommit string `json:"head_commit"` // Short hash of current HEAD
	IsMain     bool   `json:"is_main"`     // True for the primary checkout
	IsDetached bool   `json:"is_detached"` // True if HEAD is not on a branch
}

// Name returns the worktree's directory name, used as its identity in the
// status store and for tmux session naming.
func (w Worktree) Name() string {
	return filepath.Base(w.Path)
}

// CreateOptions configures CreateWorktree.
type CreateOptions struct {
	BaseBranch string // Base for new branches (default: current branch)
	Path       string // Explicit worktree path (default: generated)
	Force      bool   // Allow a second worktree for an existing branch
}

// ListWorktrees returns all worktrees of the repository, parsed from
// `git worktree list --porcelain`.
//
// A listing failure degrades to an empty slice rather than an error so
// callers can treat "cannot list" as "nothing to show". This mirrors
// long-standing behavior; the failure is logged so it is not invisible.
func (g *Context) ListWorktrees() []Worktree {
	output, err := g.runGit("worktree", "list", "--porcelain")
	if err != nil {
		slog.Warn("worktree listing failed, treating as empty", "error", err)
		return nil
	}
	return g.parseWorktreeList(output)
}

// parseWorktreeList parses porcelain output. Blocks are separated by blank
// lines; each block yields at most one record, and blocks without a path
// are skipped.
func (g *Context) parseWorktreeList(output string) []Worktree {
	var worktrees []Worktree
	var cur Worktree
	var sawPath bool

	flush := func() {
		if sawPath {
			worktrees = append(worktrees, cur)
		}
		cur = Worktree{}
		sawPath = false
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}

		switch {
		case strings.HasPrefix(line, "worktree "):
			cur.Path = strings.TrimPrefix(line, "worktree ")
			cur.IsMain = cur.Path == g.gitRoot
			sawPath = true
		case strings.HasPrefix(line, "HEAD "):
			head := strings.TrimPrefix(line, "HEAD ")
			if len(head) > 7 {
				head = head[:7]
			}
			cur.HeadCommit = head
		case strings.HasPrefix(line, "branch "):
			ref := strings.TrimPrefix(line, "branch ")
			cur.Branch = strings.TrimPrefix(ref, "refs/heads/")
		case line == "detached":
			cur.IsDetached = true
		}
	}
	flush()

	for i := range worktrees {
		if worktrees[i].Branch == "" {
			worktrees[i].Branch = DetachedBranch
		}
	}
	return worktrees
}

// FindWorktree finds a worktree by exact name, exact branch, exact path,
// or branch suffix match (".../identifier"), in that precedence order.
// Returns ErrWorktreeNotFound if nothing matches.
func (g *Context) FindWorktree(identifier string) (*Worktree, error) {
	worktrees := g.ListWorktrees()

	for _, match := range []func(Worktree) bool{
		func(w Worktree) bool { return w.Name() == identifier },
		func(w Worktree) bool { return w.Branch == identifier },
		func(w Worktree) bool { return w.Path == identifier },
		func(w Worktree) bool { return strings.HasSuffix(w.Branch, "/"+identifier) },
	} {
		for _, wt := range worktrees {
			if match(wt) {
				return &wt, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrWorktreeNotFound, identifier)
}

// WorktreePath returns the generated path for a branch's worktree:
// {repoParent}/{repoName}-{sanitizedBranch}.
func (g *Context) WorktreePath(branch string) string {
	name := g.ProjectName() + "-" + SanitizeBranchName(branch)
	return filepath.Join(filepath.Dir(g.gitRoot), name)
}

// CreateWorktree creates a worktree for branch. If the branch exists it is
// checked out; otherwise it is created from opts.BaseBranch (default: the
// currently checked-out branch). Returns the freshly re-queried record.
//
// Fails with ErrWorktreeExists if the target directory exists or the branch
// is already checked out elsewhere (unless opts.Force).
func (g *Context) CreateWorktree(branch string, opts CreateOptions) (*Worktree, error) {
	worktreePath := opts.Path
	if worktreePath == "" {
		worktreePath = g.WorktreePath(branch)
	}

	if _, err := os.Stat(worktreePath); err == nil {
		return nil, fmt.Errorf("%w: directory already exists: %s", ErrWorktreeExists, worktreePath)
	}

	if existing, err := g.FindWorktree(branch); err == nil && !opts.Force {
		return nil, fmt.Errorf("%w: branch %q is checked out at %s", ErrWorktreeExists, branch, existing.Path)
	}

	if g.BranchExists(branch) {
		if _, err := g.runGit("worktree", "add", worktreePath, branch); err != nil {
			return nil, &Error{Op: "create worktree", Output: commandOutput(err), Err: err}
		}
	} else {
		base := opts.BaseBranch
		if base == "" {
			current, err := g.CurrentBranch()
			if err != nil {
				return nil, err
			}
			base = current
		}
		if _, err := g.runGit("worktree", "add", "-b", branch, worktreePath, base); err != nil {
			return nil, &Error{Op: "create worktree", Output: commandOutput(err), Err: err}
		}
	}

	created, err := g.FindWorktree(branch)
	if err != nil {
		return nil, &Error{
			Op:  "create worktree",
			Err: fmt.Errorf("worktree created but not found at %s", worktreePath),
		}
	}
	return created, nil
}

// DeleteWorktree removes the worktree matching identifier and returns the
// deleted path. The main worktree is never deletable, regardless of force.
func (g *Context) DeleteWorktree(identifier string, force bool) (string, error) {
	worktree, err := g.FindWorktree(identifier)
	if err != nil {
		return "", err
	}

	if worktree.IsMain {
		return "", &Error{Op: "delete worktree", Err: ErrMainWorktree}
	}

	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, worktree.Path)

	if _, err := g.runGit(args...); err != nil {
		return "", &Error{Op: "delete worktree", Output: commandOutput(err), Err: err}
	}
	return worktree.Path, nil
}

// PruneWorktrees removes stale worktree administrative files.
func (g *Context) PruneWorktrees() error {
	if _, err := g.runGit("worktree", "prune"); err != nil {
		return &Error{Op: "prune worktrees", Err: err}
	}
	return nil
}

// commandOutput extracts the tool's combined output from a runner error,
// for surfacing stderr in wrapped operation errors.
func commandOutput(err error) string {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Output
	}
	return ""
}
