package cleanup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestTracker(t *testing.T) (*UsageTracker, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worktree_stats.json")
	tracker, err := NewUsageTracker(path)
	if err != nil {
		t.Fatalf("NewUsageTracker() error = %v", err)
	}
	return tracker, path
}

func TestRecordAccessCreatesRecord(t *testing.T) {
	tracker, _ := newTestTracker(t)

	if err := tracker.RecordAccess("/repos/demo-feature-x", "feature/x"); err != nil {
		t.Fatalf("RecordAccess() error = %v", err)
	}

	rec, ok := tracker.Stats("/repos/demo-feature-x")
	if !ok {
		t.Fatal("Stats() missing record after RecordAccess")
	}
	if rec.Branch != "feature/x" {
		t.Errorf("Branch = %q, want feature/x", rec.Branch)
	}
	if rec.AccessCount != 1 {
		t.Errorf("AccessCount = %d, want 1", rec.AccessCount)
	}
	if rec.CreatedAt.IsZero() || rec.LastAccessed.IsZero() {
		t.Error("timestamps should be set on first access")
	}
}

func TestRecordAccessIncrementsCount(t *testing.T) {
	tracker, _ := newTestTracker(t)

	for i := 0; i < 3; i++ {
		if err := tracker.RecordAccess("/repos/demo-feature-x", "feature/x"); err != nil {
			t.Fatalf("RecordAccess() error = %v", err)
		}
	}

	rec, _ := tracker.Stats("/repos/demo-feature-x")
	if rec.AccessCount != 3 {
		t.Errorf("AccessCount = %d, want 3", rec.AccessCount)
	}
}

func TestTrackerPersistsAcrossLoads(t *testing.T) {
	tracker, path := newTestTracker(t)

	if err := tracker.RecordAccess("/repos/demo-feature-x", "feature/x"); err != nil {
		t.Fatalf("RecordAccess() error = %v", err)
	}

	reloaded, err := NewUsageTracker(path)
	if err != nil {
		t.Fatalf("NewUsageTracker() reload error = %v", err)
	}
	rec, ok := reloaded.Stats("/repos/demo-feature-x")
	if !ok {
		t.Fatal("reloaded tracker missing record")
	}
	if rec.Branch != "feature/x" || rec.AccessCount != 1 {
		t.Errorf("reloaded record = %+v", rec)
	}
}

func TestTrackerRemove(t *testing.T) {
	tracker, _ := newTestTracker(t)

	if err := tracker.RecordAccess("/repos/demo-feature-x", "feature/x"); err != nil {
		t.Fatalf("RecordAccess() error = %v", err)
	}
	if err := tracker.Remove("/repos/demo-feature-x"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, ok := tracker.Stats("/repos/demo-feature-x"); ok {
		t.Error("record still present after Remove")
	}

	// Removing an untracked path is a no-op.
	if err := tracker.Remove("/repos/never-tracked"); err != nil {
		t.Errorf("Remove() untracked error = %v", err)
	}
}

func TestTrackerCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worktree_stats.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	tracker, err := NewUsageTracker(path)
	if err != nil {
		t.Fatalf("NewUsageTracker() error = %v", err)
	}
	if len(tracker.All()) != 0 {
		t.Errorf("All() = %v, want empty after corrupt load", tracker.All())
	}
}

func TestTrackerFilePermissions(t *testing.T) {
	tracker, path := newTestTracker(t)

	if err := tracker.RecordAccess("/repos/demo-feature-x", "feature/x"); err != nil {
		t.Fatalf("RecordAccess() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestLastAccessed(t *testing.T) {
	tracker, _ := newTestTracker(t)

	if _, ok := tracker.LastAccessed("/repos/demo-feature-x"); ok {
		t.Error("LastAccessed() should report false for untracked path")
	}

	before := time.Now().Add(-time.Second)
	if err := tracker.RecordAccess("/repos/demo-feature-x", "feature/x"); err != nil {
		t.Fatalf("RecordAccess() error = %v", err)
	}

	got, ok := tracker.LastAccessed("/repos/demo-feature-x")
	if !ok {
		t.Fatal("LastAccessed() missing after RecordAccess")
	}
	if got.Before(before) {
		t.Errorf("LastAccessed = %v, want after %v", got, before)
	}
}
