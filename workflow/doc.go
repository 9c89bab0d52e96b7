// Package workflow wires worktree lifecycle operations into flowgraph
// pipelines.
//
// Two graphs are provided:
//
//	create: create-worktree → setup-env → create-session → init-status → notify
//	delete: kill-session → remove-status → delete-worktree → notify
//
// The worktree step is the primary operation; environment setup, tmux
// session creation, status tracking, and notification failures are
// downgraded to state warnings so a usable worktree is never rolled back
// over a secondary failure.
//
// Services reach nodes through context injection:
//
//	services := &workflow.Services{Git: gitCtx, Tmux: tmuxMgr, Tracker: tracker}
//	ctx := services.InjectAll(context.Background())
//	state := workflow.NewState("feature/login")
//	result, err := workflow.RunCreate(ctx, state)
package workflow
