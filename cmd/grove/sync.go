package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/git"
	"github.com/grovekit/grove/notify"
)

var (
	syncStrategy string
	syncStash    bool
	syncRemote   string
)

var syncCmd = &cobra.Command{
	Use:   "sync [worktree]",
	Short: "Pull upstream changes into worktrees",
	Long: `Fetch once and update every worktree against its upstream branch,
or just the named worktree. Worktrees with uncommitted changes are
skipped unless stashing is enabled.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncStrategy, "strategy", "", "Pull strategy: merge or rebase")
	syncCmd.Flags().BoolVar(&syncStash, "stash", false, "Stash uncommitted changes before pulling")
	syncCmd.Flags().StringVar(&syncRemote, "remote", "", "Remote to fetch (default origin)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	g, err := openGit()
	if err != nil {
		return err
	}
	settings := loadSettings(g.GitRoot())

	opts := git.SyncOptions{
		Strategy:  settings.Sync.Strategy,
		AutoStash: settings.Sync.AutoStash || syncStash,
		Remote:    syncRemote,
	}
	if syncStrategy != "" {
		opts.Strategy = syncStrategy
	}

	svc := git.NewSyncService(g)
	var report *git.SyncReport
	if len(args) == 1 {
		report, err = svc.SyncOne(args[0], opts)
	} else {
		report, err = svc.SyncAll(opts)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range report.Results {
		if res.Status != git.SyncSuccess && res.Status != git.SyncUpToDate {
			failed++
		}
	}
	severity := notify.SeverityInfo
	if failed > 0 {
		severity = notify.SeverityWarning
	}
	_ = newNotifier(settings).Notify(cmd.Context(), notify.Event{
		Type:      notify.EventSyncCompleted,
		RunID:     report.RunID,
		Message:   fmt.Sprintf("synced %d worktrees, %d need attention", len(report.Results), failed),
		Severity:  severity,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"worktrees": len(report.Results),
			"failed":    failed,
			"duration":  report.Duration,
		},
	})

	if jsonOutput {
		return printJSON(report)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header("worktree", "branch", "status", "behind", "ahead"))
	for _, res := range report.Results {
		line := string(res.Status)
		if res.Message != "" {
			line += dimStyle.Render(" " + res.Message)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
			res.Worktree, res.Branch, renderSyncStatus(res.Status, line), res.Behind, res.Ahead)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println(dimStyle.Render("completed in " + report.Duration))
	return nil
}

func renderSyncStatus(st git.SyncStatus, line string) string {
	switch st {
	case git.SyncSuccess:
		return successStyle.Render(line)
	case git.SyncUpToDate:
		return dimStyle.Render(line)
	case git.SyncConflicts, git.SyncError:
		return errorStyle.Render(line)
	default:
		return warnStyle.Render(line)
	}
}
