package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/status"
)

var (
	sendPane   int
	sendWindow int
)

var sendCmd = &cobra.Command{
	Use:   "send <worktree|branch> <command>...",
	Short: "Send a command to a worktree's tmux session",
	Long: `Type a command into a pane of the worktree's tmux session and press
enter. The command is recorded in the worktree's activity history with
secrets redacted.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().IntVar(&sendPane, "pane", 0, "Target pane index")
	sendCmd.Flags().IntVar(&sendWindow, "window", 0, "Target window index")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	g, err := openGit()
	if err != nil {
		return err
	}
	settings := loadSettings(g.GitRoot())

	wt, err := g.FindWorktree(args[0])
	if err != nil {
		return err
	}
	command := strings.Join(args[1:], " ")

	tm := newTmux(settings)
	session := tm.SessionName(wt.Name())
	if !tm.HasSession(session) {
		return fmt.Errorf("no tmux session for worktree %s", wt.Name())
	}

	if err := tm.SendKeys(session, command, sendPane, sendWindow); err != nil {
		return err
	}

	tracker, err := newTracker(settings)
	if err != nil {
		return err
	}
	source := ""
	if cwd, cwdErr := os.Getwd(); cwdErr == nil {
		source = tracker.CurrentWorktreeName(cwd)
	}
	if _, err := tracker.RecordCommand(wt.Name(), command, source, sendPane, sendWindow); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("! command not recorded: "+err.Error()))
	}

	if jsonOutput {
		return printJSON(map[string]any{
			"worktree": wt.Name(),
			"session":  session,
			"command":  status.RedactSecrets(command),
			"pane":     sendPane,
			"window":   sendWindow,
		})
	}

	fmt.Printf("%s sent to %s\n", successStyle.Render("✓"), boldStyle.Render(session))
	return nil
}
