package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeYAML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveDefaults(t *testing.T) {
	r := NewResolver("", WithPaths("", ""))
	cfg := r.Resolve()

	if got := cfg.Get("tmux.layout"); got != "main-vertical" {
		t.Errorf("tmux.layout = %q", got)
	}
	if _, source := cfg.GetWithSource("sync.strategy"); source != SourceDefault {
		t.Errorf("source = %s, want default", source)
	}
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	global := writeYAML(t, dir, "global.yaml", "tmux.layout: quad\nsync.strategy: rebase\nai.tool: opencode\n")
	local := writeYAML(t, dir, "local.yaml", "sync.strategy: merge\nai.tool: droid\n")

	t.Setenv("GROVE_AI_TOOL", "claude")

	r := NewResolver("", WithPaths(global, local))
	cfg := r.Resolve()

	// Global only.
	if value, source := cfg.GetWithSource("tmux.layout"); value != "quad" || source != SourceGlobal {
		t.Errorf("tmux.layout = %q from %s", value, source)
	}
	// Local overrides global.
	if value, source := cfg.GetWithSource("sync.strategy"); value != "merge" || source != SourceLocal {
		t.Errorf("sync.strategy = %q from %s", value, source)
	}
	// Env overrides both.
	if value, source := cfg.GetWithSource("ai.tool"); value != "claude" || source != SourceEnv {
		t.Errorf("ai.tool = %q from %s", value, source)
	}
}

func TestResolveWithFlags(t *testing.T) {
	r := NewResolver("", WithPaths("", ""))
	cfg := r.ResolveWithFlags(map[string]string{
		"tmux.layout": "even-vertical",
		"ai.tool":     "", // empty flags are ignored
	})

	if value, source := cfg.GetWithSource("tmux.layout"); value != "even-vertical" || source != SourceFlag {
		t.Errorf("tmux.layout = %q from %s", value, source)
	}
	if _, source := cfg.GetWithSource("ai.tool"); source != SourceDefault {
		t.Errorf("empty flag should not override, source = %s", source)
	}
}

func TestResolveNestedYAML(t *testing.T) {
	dir := t.TempDir()
	local := writeYAML(t, dir, "local.yaml", "tmux:\n  layout: three-pane\n  pane_count: 3\n")

	r := NewResolver("", WithPaths("", local))
	cfg := r.Resolve()

	if got := cfg.Get("tmux.layout"); got != "three-pane" {
		t.Errorf("nested tmux.layout = %q", got)
	}
	if got := cfg.Get("tmux.pane_count"); got != "3" {
		t.Errorf("nested tmux.pane_count = %q", got)
	}
}

func TestResolveUnknownKeyWarns(t *testing.T) {
	dir := t.TempDir()
	local := writeYAML(t, dir, "local.yaml", "tmux.layot: quad\n")

	var stderr bytes.Buffer
	r := NewResolver("", WithPaths("", local), WithErrWriter(&stderr))
	cfg := r.Resolve()

	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], "tmux.layot") {
		t.Errorf("warnings = %v", r.Warnings)
	}
	if got := cfg.Get("tmux.layout"); got != "main-vertical" {
		t.Errorf("typo must not change the real key, got %q", got)
	}
}

func TestResolveMalformedFileWarns(t *testing.T) {
	dir := t.TempDir()
	local := writeYAML(t, dir, "local.yaml", ":\nnot yaml::\n  - {")

	var stderr bytes.Buffer
	r := NewResolver("", WithPaths("", local), WithErrWriter(&stderr))
	cfg := r.Resolve()

	if len(r.Warnings) == 0 {
		t.Error("malformed yaml should warn")
	}
	if got := cfg.Get("sync.strategy"); got != "merge" {
		t.Errorf("defaults must survive a bad file, got %q", got)
	}
}

func TestSettingsTyped(t *testing.T) {
	dir := t.TempDir()
	local := writeYAML(t, dir, "local.yaml",
		"tmux.pane_count: 4\nsync.auto_stash: true\nenv.extra_env_files: .env.local, .secrets\n")

	r := NewResolver("", WithPaths("", local))
	s := r.Resolve().Settings()

	if s.Tmux.PaneCount != 4 {
		t.Errorf("PaneCount = %d", s.Tmux.PaneCount)
	}
	if !s.Sync.AutoStash {
		t.Error("AutoStash should be true")
	}
	if len(s.Env.ExtraEnvFiles) != 2 || s.Env.ExtraEnvFiles[1] != ".secrets" {
		t.Errorf("ExtraEnvFiles = %v", s.Env.ExtraEnvFiles)
	}
	if s.Worktree.AutoCleanupDays != 14 {
		t.Errorf("AutoCleanupDays = %d", s.Worktree.AutoCleanupDays)
	}
}

func TestSettingsMalformedFallsBack(t *testing.T) {
	dir := t.TempDir()
	local := writeYAML(t, dir, "local.yaml", "tmux.pane_count: lots\n")

	r := NewResolver("", WithPaths("", local))
	s := r.Resolve().Settings()

	if s.Tmux.PaneCount != 2 {
		t.Errorf("malformed int should fall back to default, got %d", s.Tmux.PaneCount)
	}
}

func TestSaveLocalRoundTrip(t *testing.T) {
	gitRoot := t.TempDir()

	if err := SaveLocal(gitRoot, "tmux.layout", "quad"); err != nil {
		t.Fatalf("SaveLocal: %v", err)
	}
	if err := SaveLocal(gitRoot, "sync.auto_stash", "true"); err != nil {
		t.Fatalf("SaveLocal: %v", err)
	}

	r := NewResolver(gitRoot, WithPaths("", filepath.Join(gitRoot, LocalConfigName)))
	cfg := r.Resolve()

	if got := cfg.Get("tmux.layout"); got != "quad" {
		t.Errorf("tmux.layout = %q", got)
	}
	if !cfg.Settings().Sync.AutoStash {
		t.Error("saved boolean should resolve true")
	}
}

func TestSaveLocalRejectsUnknownKey(t *testing.T) {
	err := SaveLocal(t.TempDir(), "tmux.sessions", "8")
	if err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("expected unknown key error, got %v", err)
	}
}

func TestSaveLocalNoGitRoot(t *testing.T) {
	if err := SaveLocal("", "tmux.layout", "quad"); err == nil {
		t.Error("expected error without a git root")
	}
}
