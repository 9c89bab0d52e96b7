package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/cleanup"
	"github.com/grovekit/grove/workflow"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:     "delete <worktree|branch>",
	Aliases: []string{"rm"},
	Short:   "Delete a worktree, its tmux session, and its status entry",
	Long: `Delete the worktree identified by name, branch, or path. The tmux
session is killed and the status entry removed first; the worktree
itself is refused while it has uncommitted changes unless --force.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete even with uncommitted changes")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	g, err := openGit()
	if err != nil {
		return err
	}
	settings := loadSettings(g.GitRoot())

	wt, err := g.FindWorktree(args[0])
	if err != nil {
		return err
	}

	tracker, err := newTracker(settings)
	if err != nil {
		return err
	}

	svcs := workflow.Services{
		Git:      g,
		Tmux:     newTmux(settings),
		Tracker:  tracker,
		Notifier: newNotifier(settings),
	}

	state := workflow.NewState(wt.Branch).
		ForWorktree(wt.Name(), wt.Path).
		WithForce(deleteForce)

	out, err := workflow.RunDelete(svcs.InjectAll(cmd.Context()), state)
	if err != nil {
		return err
	}

	if ut, utErr := cleanup.NewUsageTracker(""); utErr == nil {
		_ = ut.Remove(out.WorktreePath)
	}

	if jsonOutput {
		return printJSON(out)
	}

	fmt.Printf("%s deleted worktree %s %s\n",
		successStyle.Render("✓"),
		boldStyle.Render(out.WorktreeName),
		dimStyle.Render(out.WorktreePath))
	for _, w := range out.Warnings {
		fmt.Println(warnStyle.Render("! " + w))
	}
	return nil
}
