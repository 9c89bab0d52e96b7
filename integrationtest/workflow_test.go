package integrationtest

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovekit/grove/cleanup"
	"github.com/grovekit/grove/git"
	"github.com/grovekit/grove/notify"
	"github.com/grovekit/grove/workflow"
)

// TestWorktreeLifecycle runs the create and delete pipelines against a
// real repository and checks the filesystem, branch, status store, and
// notifications at each stage.
func TestWorktreeLifecycle(t *testing.T) {
	repoPath := setupTempRepo(t)
	svcs, notifier := setupServices(t, repoPath)
	ctx := svcs.InjectAll(context.Background())

	state := workflow.NewState("feature/demo")
	created, err := workflow.RunCreate(ctx, state)
	require.NoError(t, err)

	assert.Equal(t, "repo-feature-demo", created.WorktreeName)
	assert.DirExists(t, created.WorktreePath)
	assert.True(t, svcs.Git.BranchExists("feature/demo"), "branch should exist after create")
	assert.Contains(t, created.Timings, "create-worktree")
	assert.Empty(t, created.Warnings)

	st := svcs.Tracker.Get(created.WorktreeName)
	require.NotNil(t, st, "status entry should exist after create")
	assert.Equal(t, "feature/demo", st.Branch)
	assert.Equal(t, created.WorktreePath, st.WorktreePath)

	events := notifier.all()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventWorktreeCreated, events[0].Type)
	assert.Equal(t, created.RunID, events[0].RunID)

	delState := workflow.NewState(created.Branch).
		ForWorktree(created.WorktreeName, created.WorktreePath)
	deleted, err := workflow.RunDelete(ctx, delState)
	require.NoError(t, err)

	assert.True(t, deleted.Deleted)
	assert.NoDirExists(t, created.WorktreePath)
	assert.Nil(t, svcs.Tracker.Get(created.WorktreeName), "status entry should be gone after delete")

	events = notifier.all()
	require.Len(t, events, 2)
	assert.Equal(t, notify.EventWorktreeDeleted, events[1].Type)
}

func TestDeleteRefusesMainWorktree(t *testing.T) {
	repoPath := setupTempRepo(t)
	svcs, _ := setupServices(t, repoPath)
	ctx := svcs.InjectAll(context.Background())

	state := workflow.NewState("main").ForWorktree(filepath.Base(repoPath), repoPath)
	_, err := workflow.RunDelete(ctx, state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main worktree")
	assert.DirExists(t, repoPath)
}

func TestDeleteRefusesDirtyWorktree(t *testing.T) {
	repoPath := setupTempRepo(t)
	svcs, _ := setupServices(t, repoPath)
	ctx := svcs.InjectAll(context.Background())

	created, err := workflow.RunCreate(ctx, workflow.NewState("feature/dirty"))
	require.NoError(t, err)

	scratch := filepath.Join(created.WorktreePath, "scratch.txt")
	require.NoError(t, os.WriteFile(scratch, []byte("wip\n"), 0o644))

	delState := workflow.NewState(created.Branch).
		ForWorktree(created.WorktreeName, created.WorktreePath)
	_, err = workflow.RunDelete(ctx, delState)
	require.Error(t, err, "delete should refuse a worktree with uncommitted changes")
	assert.DirExists(t, created.WorktreePath)

	// Force overrides the refusal.
	deleted, err := workflow.RunDelete(ctx, delState.WithForce(true))
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.NoDirExists(t, created.WorktreePath)
}

// TestSyncPullsUpstreamChanges clones an origin repository, adds a
// commit upstream, and verifies sync pulls it into the clone.
func TestSyncPullsUpstreamChanges(t *testing.T) {
	originPath := setupTempRepo(t)

	clonePath := filepath.Join(t.TempDir(), "clone")
	cmd := exec.Command("git", "clone", originPath, clonePath)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git clone failed: %v\n%s", err, out)
	}

	g, err := git.NewContext(clonePath)
	require.NoError(t, err)

	svc := git.NewSyncService(g)
	report, err := svc.SyncAll(git.SyncOptions{Strategy: "merge"})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, git.SyncUpToDate, report.Results[0].Status)

	// New commit in the origin working tree.
	extra := filepath.Join(originPath, "CHANGES.md")
	require.NoError(t, os.WriteFile(extra, []byte("- added sync\n"), 0o644))
	for _, args := range [][]string{{"add", "."}, {"commit", "-m", "Add changelog"}} {
		cmd := exec.Command("git", args...)
		cmd.Dir = originPath
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v\n%s", args, err, out)
		}
	}

	report, err = svc.SyncAll(git.SyncOptions{Strategy: "merge"})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, git.SyncSuccess, report.Results[0].Status)
	assert.Equal(t, 1, report.Results[0].Behind)
	assert.FileExists(t, filepath.Join(clonePath, "CHANGES.md"))
	assert.True(t, report.Succeeded())
}

// TestCleanupProtectsAndForces exercises the cleanup service end to end:
// a stale worktree on a branch with no upstream is protected as
// unpushed, and force overrides that.
func TestCleanupProtectsAndForces(t *testing.T) {
	repoPath := setupTempRepo(t)
	svcs, _ := setupServices(t, repoPath)
	ctx := svcs.InjectAll(context.Background())

	created, err := workflow.RunCreate(ctx, workflow.NewState("feature/stale"))
	require.NoError(t, err)

	ut, err := cleanup.NewUsageTracker(filepath.Join(t.TempDir(), "worktree_stats.json"))
	require.NoError(t, err)
	require.NoError(t, ut.RecordAccess(created.WorktreePath, created.Branch))

	// A clock one month ahead makes everything stale.
	future := func() time.Time { return time.Now().AddDate(0, 1, 0) }
	svc, err := cleanup.NewService(svcs.Git, ut, cleanup.DefaultConfig(), cleanup.WithClock(future))
	require.NoError(t, err)

	report := svc.Cleanup(svcs.Git.ListWorktrees(), cleanup.Options{})
	assert.Equal(t, 1, report.Stale)
	assert.Equal(t, 1, report.Skipped, "unpushed branch should be protected")
	assert.Equal(t, 0, report.Cleaned)
	assert.DirExists(t, created.WorktreePath)

	report = svc.Cleanup(svcs.Git.ListWorktrees(), cleanup.Options{Force: true})
	assert.Equal(t, 1, report.Cleaned)
	assert.Empty(t, report.Errors)
	assert.NoDirExists(t, created.WorktreePath)
}
