package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingRunner struct {
	workDir string
	cmdline string
	err     error
}

func (r *recordingRunner) Run(workDir string, name string, args ...string) (string, error) {
	r.workDir = workDir
	r.cmdline = name + " " + strings.Join(args, " ")
	return "", r.err
}

func TestCopyEnvFileRewritesPaths(t *testing.T) {
	source := t.TempDir()
	worktree := t.TempDir()
	env := "DATABASE_URL=sqlite:///" + source + "/db.sqlite\nLOG_PATH=" + source + "/logs\nPORT=3000\n"
	if err := os.WriteFile(filepath.Join(source, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	setup := NewSetup(&Info{Root: source, Type: TypeNode, PackageManager: ManagerNPM})
	target, err := setup.CopyEnvFile(worktree, true)
	if err != nil {
		t.Fatalf("CopyEnvFile: %v", err)
	}
	if target != filepath.Join(worktree, ".env") {
		t.Errorf("target = %q", target)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if strings.Contains(content, source) {
		t.Errorf("source paths survived rewrite:\n%s", content)
	}
	if !strings.Contains(content, "LOG_PATH="+worktree+"/logs") {
		t.Errorf("paths not rewritten into worktree:\n%s", content)
	}
	if !strings.Contains(content, "PORT=3000") {
		t.Error("non-path variables must pass through unchanged")
	}
}

func TestCopyEnvFileVerbatim(t *testing.T) {
	source := t.TempDir()
	worktree := t.TempDir()
	env := "CACHE_DIR=" + source + "/cache\n"
	os.WriteFile(filepath.Join(source, ".env"), []byte(env), 0o600)

	setup := NewSetup(&Info{Root: source})
	if _, err := setup.CopyEnvFile(worktree, false); err != nil {
		t.Fatalf("CopyEnvFile: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(worktree, ".env"))
	if string(data) != env {
		t.Errorf("verbatim copy changed content: %q", data)
	}
}

func TestCopyEnvFileNoSource(t *testing.T) {
	setup := NewSetup(&Info{Root: t.TempDir()})
	target, err := setup.CopyEnvFile(t.TempDir(), true)
	if err != nil {
		t.Fatalf("CopyEnvFile: %v", err)
	}
	if target != "" {
		t.Errorf("missing source .env should be a no-op, got %q", target)
	}
}

func TestInstallDependencies(t *testing.T) {
	worktree := t.TempDir()
	runner := &recordingRunner{}
	setup := NewSetup(&Info{Root: t.TempDir(), Type: TypeGo, PackageManager: ManagerGo}, WithRunner(runner))

	if err := setup.InstallDependencies(worktree); err != nil {
		t.Fatalf("InstallDependencies: %v", err)
	}
	if runner.cmdline != "go mod download" {
		t.Errorf("cmdline = %q", runner.cmdline)
	}
	if runner.workDir != worktree {
		t.Errorf("workDir = %q, want %q", runner.workDir, worktree)
	}
}

func TestInstallDependenciesUnknownManager(t *testing.T) {
	setup := NewSetup(&Info{PackageManager: ManagerUnknown}, WithRunner(&recordingRunner{}))
	if err := setup.InstallDependencies(t.TempDir()); err == nil {
		t.Error("expected error for unknown manager")
	}
}

func TestInstallDependenciesMissingWorktree(t *testing.T) {
	setup := NewSetup(&Info{PackageManager: ManagerGo}, WithRunner(&recordingRunner{}))
	if err := setup.InstallDependencies("/no/such/worktree"); err == nil {
		t.Error("expected error for missing worktree path")
	}
}

func TestSetupWorktreeContinuesPastEnvFailure(t *testing.T) {
	// Unreadable source .env must not abort the install step.
	source := t.TempDir()
	worktree := t.TempDir()
	envPath := filepath.Join(source, ".env")
	os.WriteFile(envPath, []byte("X=1"), 0o600)
	os.Chmod(envPath, 0o000)
	t.Cleanup(func() { os.Chmod(envPath, 0o600) })

	runner := &recordingRunner{}
	setup := NewSetup(&Info{Root: source, PackageManager: ManagerGo}, WithRunner(runner))

	if err := setup.SetupWorktree(worktree, DefaultSetupOptions()); err != nil {
		t.Fatalf("SetupWorktree: %v", err)
	}
	if runner.cmdline == "" {
		t.Error("install should still run after env copy failure")
	}
}

func TestSetupWorktreeExtraFiles(t *testing.T) {
	source := t.TempDir()
	worktree := t.TempDir()
	os.WriteFile(filepath.Join(source, ".env.local"), []byte("LOCAL=1"), 0o600)

	setup := NewSetup(&Info{Root: source, PackageManager: ManagerGo}, WithRunner(&recordingRunner{}))
	opts := SetupOptions{CopyEnv: true, ExtraEnvFiles: []string{".env.local", ".secrets"}}
	if err := setup.SetupWorktree(worktree, opts); err != nil {
		t.Fatalf("SetupWorktree: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(worktree, ".env.local"))
	if err != nil {
		t.Fatalf("extra file not copied: %v", err)
	}
	if string(data) != "LOCAL=1" {
		t.Errorf("extra file content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(worktree, ".secrets")); err == nil {
		t.Error("nonexistent extra files must not be created")
	}
}
