package workflow

import (
	"context"

	"github.com/grovekit/grove/git"
	"github.com/grovekit/grove/notify"
	"github.com/grovekit/grove/project"
	"github.com/grovekit/grove/status"
	"github.com/grovekit/grove/tmux"
)

// serviceContextKey is a private type for context keys to avoid collisions.
type serviceContextKey string

const (
	gitServiceKey     serviceContextKey = "grove.git"
	tmuxServiceKey    serviceContextKey = "grove.tmux"
	trackerServiceKey serviceContextKey = "grove.tracker"
	envServiceKey     serviceContextKey = "grove.env"
)

// WithGit adds a git context to the context.
func WithGit(ctx context.Context, g *git.Context) context.Context {
	return context.WithValue(ctx, gitServiceKey, g)
}

// Git extracts the git context, or nil.
func Git(ctx context.Context) *git.Context {
	if g, ok := ctx.Value(gitServiceKey).(*git.Context); ok {
		return g
	}
	return nil
}

// WithTmux adds a tmux manager to the context.
func WithTmux(ctx context.Context, m *tmux.Manager) context.Context {
	return context.WithValue(ctx, tmuxServiceKey, m)
}

// Tmux extracts the tmux manager, or nil.
func Tmux(ctx context.Context) *tmux.Manager {
	if m, ok := ctx.Value(tmuxServiceKey).(*tmux.Manager); ok {
		return m
	}
	return nil
}

// WithTracker adds a status tracker to the context.
func WithTracker(ctx context.Context, t *status.Tracker) context.Context {
	return context.WithValue(ctx, trackerServiceKey, t)
}

// Tracker extracts the status tracker, or nil.
func Tracker(ctx context.Context) *status.Tracker {
	if t, ok := ctx.Value(trackerServiceKey).(*status.Tracker); ok {
		return t
	}
	return nil
}

// EnvPreparer prepares a fresh worktree's development environment.
type EnvPreparer interface {
	PrepareWorktree(worktreePath string) error
}

// WithEnv adds an environment preparer to the context.
func WithEnv(ctx context.Context, p EnvPreparer) context.Context {
	return context.WithValue(ctx, envServiceKey, p)
}

// Env extracts the environment preparer, or nil.
func Env(ctx context.Context) EnvPreparer {
	if p, ok := ctx.Value(envServiceKey).(EnvPreparer); ok {
		return p
	}
	return nil
}

// ProjectPreparer is the standard EnvPreparer: it detects the project at
// the repository root and runs dependency install and env file copying
// in the new worktree.
type ProjectPreparer struct {
	Root    string
	Options project.SetupOptions
}

// PrepareWorktree implements EnvPreparer.
func (p *ProjectPreparer) PrepareWorktree(worktreePath string) error {
	info, err := project.Detect(p.Root)
	if err != nil {
		return err
	}
	return project.NewSetup(info).SetupWorktree(worktreePath, p.Options)
}

// Services bundles everything workflow nodes consume, for convenient
// one-call injection.
type Services struct {
	Git      *git.Context
	Tmux     *tmux.Manager
	Tracker  *status.Tracker
	Env      EnvPreparer
	Notifier notify.Notifier
}

// InjectAll adds every configured service to the context.
func (s *Services) InjectAll(ctx context.Context) context.Context {
	if s.Git != nil {
		ctx = WithGit(ctx, s.Git)
	}
	if s.Tmux != nil {
		ctx = WithTmux(ctx, s.Tmux)
	}
	if s.Tracker != nil {
		ctx = WithTracker(ctx, s.Tracker)
	}
	if s.Env != nil {
		ctx = WithEnv(ctx, s.Env)
	}
	if s.Notifier != nil {
		ctx = notify.WithNotifier(ctx, s.Notifier)
	}
	return ctx
}
