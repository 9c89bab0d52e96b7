package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/cleanup"
	"github.com/grovekit/grove/notify"
)

var (
	cleanupDryRun bool
	cleanupForce  bool
	cleanupDays   int
	cleanupReport bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stale worktrees",
	Long: `Delete worktrees that have not been used for the staleness threshold.
Worktrees with uncommitted changes or unpushed commits are protected
unless --force. Use --dry-run to preview, --report for usage stats.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().BoolVarP(&cleanupDryRun, "dry-run", "n", false, "Report without deleting")
	cleanupCmd.Flags().BoolVarP(&cleanupForce, "force", "f", false, "Ignore protection rules")
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "Override the staleness threshold")
	cleanupCmd.Flags().BoolVar(&cleanupReport, "report", false, "Show per-worktree usage instead of cleaning")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	g, err := openGit()
	if err != nil {
		return err
	}
	settings := loadSettings(g.GitRoot())

	ut, err := cleanup.NewUsageTracker("")
	if err != nil {
		return err
	}
	cfg := cleanup.DefaultConfig()
	if settings.Worktree.AutoCleanupDays > 0 {
		cfg.StaleThresholdDays = settings.Worktree.AutoCleanupDays
	}
	svc, err := cleanup.NewService(g, ut, cfg)
	if err != nil {
		return err
	}

	worktrees := g.ListWorktrees()

	if cleanupReport {
		stats := svc.UsageReport(worktrees)
		if jsonOutput {
			return printJSON(stats)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, header("worktree", "branch", "last used", "accesses", "dirty"))
		for _, st := range stats {
			dirty := dimStyle.Render("-")
			if st.HasUncommittedChanges {
				dirty = warnStyle.Render("uncommitted")
			} else if st.HasUnpushedCommits {
				dirty = warnStyle.Render("unpushed")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				st.Path, st.Branch, relativeTime(st.LastAccessed), st.AccessCount, dirty)
		}
		return w.Flush()
	}

	report := svc.Cleanup(worktrees, cleanup.Options{
		DryRun:        cleanupDryRun,
		ThresholdDays: cleanupDays,
		Force:         cleanupForce,
	})

	if !cleanupDryRun && report.Cleaned > 0 {
		if err := g.PruneWorktrees(); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("prune worktrees: %v", err))
		}
		// Status entries for deleted worktrees are orphans now.
		if tracker, tErr := newTracker(settings); tErr == nil {
			var names []string
			for _, wt := range g.ListWorktrees() {
				names = append(names, wt.Name())
			}
			_, _ = tracker.CleanupOrphans(names)
		}
	}

	severity := notify.SeverityInfo
	if len(report.Errors) > 0 {
		severity = notify.SeverityWarning
	}
	_ = newNotifier(settings).Notify(cmd.Context(), notify.Event{
		Type:      notify.EventCleanupCompleted,
		RunID:     report.RunID,
		Message:   fmt.Sprintf("cleaned %d of %d stale worktrees", report.Cleaned, report.Stale),
		Severity:  severity,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"dry_run": report.DryRun,
			"scanned": report.Scanned,
			"stale":   report.Stale,
			"cleaned": report.Cleaned,
			"skipped": report.Skipped,
		},
	})

	if jsonOutput {
		return printJSON(report)
	}

	verb := "cleaned"
	if report.DryRun {
		verb = "would clean"
	}
	fmt.Printf("%s %s %d of %d stale worktrees (scanned %d, threshold %dd)\n",
		successStyle.Render("✓"), verb, report.Cleaned, report.Stale, report.Scanned, report.ThresholdDays)
	for _, p := range report.CleanedPaths {
		fmt.Println("  " + p)
	}
	for _, p := range report.SkippedPaths {
		fmt.Println(warnStyle.Render("  skipped " + p))
	}
	for _, e := range report.Errors {
		fmt.Println(errorStyle.Render("  " + e))
	}
	return nil
}
