package workflow

import (
	"context"

	"github.com/randalmurphal/flowgraph/pkg/flowgraph"
)

// CreateGraph builds the worktree creation pipeline.
func CreateGraph() *flowgraph.Graph[State] {
	return flowgraph.NewGraph[State]().
		AddNode("create-worktree", CreateWorktreeNode).
		AddNode("setup-env", SetupEnvNode).
		AddNode("create-session", CreateSessionNode).
		AddNode("init-status", InitStatusNode).
		AddNode("notify", NotifyNode).
		AddEdge("create-worktree", "setup-env").
		AddEdge("setup-env", "create-session").
		AddEdge("create-session", "init-status").
		AddEdge("init-status", "notify").
		AddEdge("notify", flowgraph.END).
		SetEntry("create-worktree")
}

// DeleteGraph builds the worktree deletion pipeline.
func DeleteGraph() *flowgraph.Graph[State] {
	return flowgraph.NewGraph[State]().
		AddNode("kill-session", KillSessionNode).
		AddNode("remove-status", RemoveStatusNode).
		AddNode("delete-worktree", DeleteWorktreeNode).
		AddNode("notify", NotifyNode).
		AddEdge("kill-session", "remove-status").
		AddEdge("remove-status", "delete-worktree").
		AddEdge("delete-worktree", "notify").
		AddEdge("notify", flowgraph.END).
		SetEntry("kill-session")
}

// RunCreate compiles and runs the create pipeline with services taken
// from ctx.
func RunCreate(ctx context.Context, state State) (State, error) {
	compiled, err := CreateGraph().Compile()
	if err != nil {
		return state, err
	}
	return compiled.Run(flowgraph.NewContext(ctx), state)
}

// RunDelete compiles and runs the delete pipeline with services taken
// from ctx.
func RunDelete(ctx context.Context, state State) (State, error) {
	compiled, err := DeleteGraph().Compile()
	if err != nil {
		return state, err
	}
	return compiled.Run(flowgraph.NewContext(ctx), state)
}
