package integrationtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovekit/grove/workflow"
)

// TestCustomGraphComposition builds a reduced pipeline out of the stock
// nodes: worktree and status only, no session or notifications. Callers
// embedding the library compose graphs like this.
func TestCustomGraphComposition(t *testing.T) {
	repoPath := setupTempRepo(t)
	svcs, _ := setupServices(t, repoPath)

	graph := flowgraph.NewGraph[workflow.State]().
		AddNode("create-worktree", workflow.CreateWorktreeNode).
		AddNode("init-status", workflow.InitStatusNode).
		AddEdge("create-worktree", "init-status").
		AddEdge("init-status", flowgraph.END).
		SetEntry("create-worktree")

	compiled, err := graph.Compile()
	require.NoError(t, err)

	ctx := flowgraph.NewContext(svcs.InjectAll(context.Background()))
	result, err := compiled.Run(ctx, workflow.NewState("feature/custom"))
	require.NoError(t, err)

	assert.Equal(t, "repo-feature-custom", result.WorktreeName)
	assert.DirExists(t, result.WorktreePath)
	assert.Empty(t, result.SessionName, "no session node ran")
	require.NotNil(t, svcs.Tracker.Get(result.WorktreeName))

	// Only the nodes that ran recorded timings.
	assert.Contains(t, result.Timings, "create-worktree")
	assert.NotContains(t, result.Timings, "setup-env")
}

// TestGraphInsertsCustomNode splices a caller-provided node between the
// stock ones and verifies state flows through it.
func TestGraphInsertsCustomNode(t *testing.T) {
	repoPath := setupTempRepo(t)
	svcs, _ := setupServices(t, repoPath)

	marker := func(ctx flowgraph.Context, state workflow.State) (workflow.State, error) {
		if state.WorktreePath == "" {
			return state, fmt.Errorf("worktree must exist before marking")
		}
		state.AddWarning("marked by custom node")
		return state, nil
	}

	graph := flowgraph.NewGraph[workflow.State]().
		AddNode("create-worktree", workflow.CreateWorktreeNode).
		AddNode("mark", marker).
		AddNode("init-status", workflow.InitStatusNode).
		AddEdge("create-worktree", "mark").
		AddEdge("mark", "init-status").
		AddEdge("init-status", flowgraph.END).
		SetEntry("create-worktree")

	compiled, err := graph.Compile()
	require.NoError(t, err)

	ctx := flowgraph.NewContext(svcs.InjectAll(context.Background()))
	result, err := compiled.Run(ctx, workflow.NewState("feature/marked"))
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "marked by custom node", result.Warnings[0])
}

// TestGraphAbortsOnUnknownBranchBase verifies a failing node stops the
// run before downstream nodes execute.
func TestGraphAbortsOnUnknownBranchBase(t *testing.T) {
	repoPath := setupTempRepo(t)
	svcs, notifier := setupServices(t, repoPath)

	state := workflow.NewState("feature/doomed").WithBaseBranch("does-not-exist")
	_, err := workflow.RunCreate(svcs.InjectAll(context.Background()), state)
	require.Error(t, err)

	assert.Nil(t, svcs.Tracker.Get("repo-feature-doomed"), "status node must not run after failure")
	assert.Empty(t, notifier.all(), "notify node must not run after failure")
}
