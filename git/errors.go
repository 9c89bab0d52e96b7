package git

import "errors"

// Git operation errors.
var (
	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrWorktreeExists indicates a worktree already exists for the branch
	// or at the target path.
	ErrWorktreeExists = errors.New("worktree already exists")

	// ErrWorktreeNotFound indicates the worktree does not exist.
	ErrWorktreeNotFound = errors.New("worktree not found")

	// ErrMainWorktree indicates an operation that is not allowed on the
	// main worktree, such as deleting it.
	ErrMainWorktree = errors.New("cannot delete the main worktree")

	// ErrNoUpstream indicates the branch has no upstream tracking branch.
	ErrNoUpstream = errors.New("no upstream branch configured")
)

// Error wraps a git command error with context.
type Error struct {
	Op     string // Operation that failed (e.g., "create worktree")
	Output string // Combined stdout/stderr output
	Err    error  // Underlying error
}

func (e *Error) Error() string {
	if e.Output != "" {
		return e.Op + ": " + e.Output
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
