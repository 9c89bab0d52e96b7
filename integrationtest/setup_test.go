package integrationtest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/grovekit/grove/git"
	"github.com/grovekit/grove/notify"
	"github.com/grovekit/grove/status"
	"github.com/grovekit/grove/workflow"
)

// setupTempRepo creates a real git repository with one commit. The repo
// sits inside a subdirectory of a fresh temp dir so worktrees generated
// next to it stay inside the test's sandbox.
func setupTempRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	dir := filepath.Join(t.TempDir(), "repo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	run("init", "-b", "main")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test User")

	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("# Test Repo\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	run("add", ".")
	run("commit", "-m", "Initial commit")

	return dir
}

// recordingNotifier captures every event for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(ctx context.Context, event notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) all() []notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Event(nil), n.events...)
}

// setupServices wires real services against the repository. Tmux is left
// out so the pipelines run on machines without it; the session node
// skips itself when the manager is absent.
func setupServices(t *testing.T, repoPath string) (workflow.Services, *recordingNotifier) {
	t.Helper()

	g, err := git.NewContext(repoPath)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	tracker, err := status.NewTracker(status.Config{
		StoragePath:       filepath.Join(t.TempDir(), "status.json"),
		MaxCommandHistory: 20,
		StoreCommands:     true,
		RedactCommands:    true,
	})
	if err != nil {
		t.Fatalf("NewTracker: %v", err)
	}

	notifier := &recordingNotifier{}
	return workflow.Services{
		Git:      g,
		Tracker:  tracker,
		Notifier: notifier,
	}, notifier
}
