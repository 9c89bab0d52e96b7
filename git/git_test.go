package git

import (
	"errors"
	"testing"
)

func TestNewContextNotARepo(t *testing.T) {
	mock := NewMockRunner()
	mock.OnCommand("git", "rev-parse", "--show-toplevel").Return("",
		&CommandError{Output: "fatal: not a git repository"})

	_, err := NewContext(t.TempDir(), WithRunner(mock))
	if !errors.Is(err, ErrNotGitRepo) {
		t.Errorf("expected ErrNotGitRepo, got %v", err)
	}
}

func TestProjectName(t *testing.T) {
	mock := NewMockRunner()
	g := newTestContext(t, mock)
	if got := g.ProjectName(); got != "demo" {
		t.Errorf("ProjectName = %q, want demo", got)
	}
}

func TestAheadBehind(t *testing.T) {
	mock := NewMockRunner()
	g := newTestContext(t, mock)
	mock.OnCommand("git", "rev-list", "--left-right", "--count", "HEAD...origin/main").Return("2\t5", nil)

	ahead, behind, err := g.AheadBehind("origin/main")
	if err != nil {
		t.Fatalf("AheadBehind: %v", err)
	}
	if ahead != 2 || behind != 5 {
		t.Errorf("ahead=%d behind=%d, want 2/5", ahead, behind)
	}
}

func TestAheadBehindMalformed(t *testing.T) {
	mock := NewMockRunner()
	g := newTestContext(t, mock)
	mock.OnCommand("git", "rev-list", "--left-right", "--count", "HEAD...origin/main").Return("garbage", nil)

	if _, _, err := g.AheadBehind("origin/main"); err == nil {
		t.Error("expected error for malformed count output")
	}
}

func TestIsClean(t *testing.T) {
	mock := NewMockRunner()
	g := newTestContext(t, mock)

	mock.OnCommand("git", "status", "--short").Return("", nil)
	clean, err := g.IsClean()
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if !clean {
		t.Error("empty status should be clean")
	}

	mock.OnCommand("git", "status", "--short").Return(" M main.go", nil)
	clean, _ = g.IsClean()
	if clean {
		t.Error("modified files should not be clean")
	}
}

func TestHasUnpushedCommits(t *testing.T) {
	mock := NewMockRunner()
	g := newTestContext(t, mock)

	// No upstream at all counts as unpushed.
	mock.OnCommand("git", "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}").Return("",
		&CommandError{Output: "fatal: no upstream"})
	if !g.HasUnpushedCommits() {
		t.Error("missing upstream should count as unpushed")
	}

	mock.OnCommand("git", "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}").Return("origin/main", nil)
	mock.OnCommand("git", "rev-list", "--left-right", "--count", "HEAD...origin/main").Return("0\t0", nil)
	if g.HasUnpushedCommits() {
		t.Error("0 ahead should not count as unpushed")
	}
}
