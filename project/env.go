package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoInstallCommand indicates the detected package manager has no known
// install invocation.
var ErrNoInstallCommand = errors.New("no install command for package manager")

// InstallTimeout bounds a dependency installation run.
const InstallTimeout = 5 * time.Minute

// installCommands maps each manager to its install invocation.
var installCommands = map[PackageManager][]string{
	ManagerUV:       {"uv", "sync"},
	ManagerPip:      {"pip", "install", "-r", "requirements.txt"},
	ManagerPoetry:   {"poetry", "install"},
	ManagerPipenv:   {"pipenv", "install"},
	ManagerNPM:      {"npm", "install"},
	ManagerYarn:     {"yarn", "install"},
	ManagerPNPM:     {"pnpm", "install"},
	ManagerBun:      {"bun", "install"},
	ManagerComposer: {"composer", "install"},
	ManagerCargo:    {"cargo", "build"},
	ManagerGo:       {"go", "mod", "download"},
}

// InstallCommand returns the install argv for a package manager.
func InstallCommand(manager PackageManager) ([]string, error) {
	cmd, ok := installCommands[manager]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoInstallCommand, manager)
	}
	return cmd, nil
}

// Runner executes external commands; injectable for tests.
type Runner interface {
	Run(workDir string, name string, args ...string) (string, error)
}

// installRunner executes installs with the 5-minute budget.
type installRunner struct{}

func (installRunner) Run(workDir string, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), InstallTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = workDir
	// A nested virtualenv confuses Python installers.
	cmd.Env = append(prunedEnviron("VIRTUAL_ENV"), "CI=false")

	output, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(output))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return trimmed, fmt.Errorf("install timed out after %s", InstallTimeout)
		}
		return trimmed, fmt.Errorf("%s failed: %s", name, firstLine(trimmed))
	}
	return trimmed, nil
}

func prunedEnviron(drop string) []string {
	env := os.Environ()
	out := env[:0]
	for _, kv := range env {
		if !strings.HasPrefix(kv, drop+"=") {
			out = append(out, kv)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// SetupOptions configures Setup for a worktree.
type SetupOptions struct {
	InstallDeps   bool     // Run the package manager's install command
	CopyEnv       bool     // Copy .env from the source checkout
	AdjustPaths   bool     // Rewrite source-tree paths in the copied .env
	ExtraEnvFiles []string // Additional untracked files to copy verbatim
}

// DefaultSetupOptions enables everything except extra files.
func DefaultSetupOptions() SetupOptions {
	return SetupOptions{InstallDeps: true, CopyEnv: true, AdjustPaths: true}
}

// Setup prepares worktrees of a detected project.
type Setup struct {
	info   *Info
	runner Runner
}

// NewSetup creates a setup helper for a detected project.
func NewSetup(info *Info, opts ...SetupOption) *Setup {
	s := &Setup{info: info, runner: installRunner{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetupOption configures Setup.
type SetupOption func(*Setup)

// WithRunner replaces the install command runner, for tests.
func WithRunner(r Runner) SetupOption {
	return func(s *Setup) { s.runner = r }
}

// SetupWorktree copies environment files and installs dependencies into a
// fresh worktree. Env-file problems are logged and skipped; an install
// failure is returned.
func (s *Setup) SetupWorktree(worktreePath string, opts SetupOptions) error {
	if opts.CopyEnv {
		if _, err := s.CopyEnvFile(worktreePath, opts.AdjustPaths); err != nil {
			slog.Warn("env file setup failed", "worktree", worktreePath, "error", err)
		}
		s.copyExtraFiles(worktreePath, opts.ExtraEnvFiles)
	}

	if opts.InstallDeps {
		if err := s.InstallDependencies(worktreePath); err != nil {
			return err
		}
	}
	return nil
}

// InstallDependencies runs the project's install command inside the
// worktree.
func (s *Setup) InstallDependencies(worktreePath string) error {
	if info, err := os.Stat(worktreePath); err != nil || !info.IsDir() {
		return fmt.Errorf("worktree path does not exist: %s", worktreePath)
	}

	cmd, err := InstallCommand(s.info.PackageManager)
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(cmd[0]); err != nil {
		return fmt.Errorf("install command not found in PATH: %s", cmd[0])
	}

	slog.Info("installing dependencies",
		"manager", s.info.PackageManager,
		"worktree", worktreePath)

	if _, err := s.runner.Run(worktreePath, cmd[0], cmd[1:]...); err != nil {
		return fmt.Errorf("install dependencies: %w", err)
	}
	return nil
}

// CopyEnvFile copies .env from the source checkout into the worktree,
// rewriting absolute paths that point into the source tree so databases,
// caches, and logs land inside the worktree instead. Returns the target
// path, or "" when the source has no .env.
func (s *Setup) CopyEnvFile(worktreePath string, adjustPaths bool) (string, error) {
	sourceEnv := filepath.Join(s.info.Root, ".env")
	targetEnv := filepath.Join(worktreePath, ".env")

	data, err := os.ReadFile(sourceEnv)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read source .env: %w", err)
	}

	content := string(data)
	if adjustPaths {
		content = strings.ReplaceAll(content, s.info.Root, strings.TrimSuffix(worktreePath, string(filepath.Separator)))
	}

	if err := os.WriteFile(targetEnv, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write worktree .env: %w", err)
	}
	return targetEnv, nil
}

// copyExtraFiles copies untracked local config files that exist in the
// source but not yet in the worktree. Failures are logged, not returned.
func (s *Setup) copyExtraFiles(worktreePath string, files []string) {
	for _, name := range files {
		src := filepath.Join(s.info.Root, name)
		dst := filepath.Join(worktreePath, name)

		if !fileExists(src) || fileExists(dst) {
			continue
		}
		data, err := os.ReadFile(src)
		if err != nil {
			slog.Warn("could not read extra env file", "file", name, "error", err)
			continue
		}
		if err := os.WriteFile(dst, data, 0o600); err != nil {
			slog.Warn("could not copy extra env file", "file", name, "error", err)
		}
	}
}
