package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/cleanup"
	"github.com/grovekit/grove/tmux"
)

var switchCmd = &cobra.Command{
	Use:   "switch <worktree|branch>",
	Short: "Attach to a worktree's tmux session",
	Long: `Attach to the worktree's tmux session, creating it first if it does
not exist. Inside tmux the client switches sessions instead of nesting.`,
	Args: cobra.ExactArgs(1),
	RunE: runSwitch,
}

func init() {
	rootCmd.AddCommand(switchCmd)
}

func runSwitch(cmd *cobra.Command, args []string) error {
	g, err := openGit()
	if err != nil {
		return err
	}
	settings := loadSettings(g.GitRoot())

	wt, err := g.FindWorktree(args[0])
	if err != nil {
		return err
	}

	tm := newTmux(settings)
	session := tm.SessionName(wt.Name())

	if !tm.HasSession(session) {
		_, err = tm.CreateSession(tmux.SessionConfig{
			Name:      session,
			WorkDir:   wt.Path,
			Layout:    tmux.Layout(settings.Tmux.Layout),
			PaneCount: settings.Tmux.PaneCount,
		})
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
	}

	if ut, utErr := cleanup.NewUsageTracker(""); utErr == nil {
		_ = ut.RecordAccess(wt.Path, wt.Branch)
	}

	if tmux.InsideTmux() {
		return tm.SwitchClient(session)
	}
	return tm.Attach(session)
}
