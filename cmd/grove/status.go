package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/status"
)

var (
	statusTask         string
	statusNotes        string
	statusDone         bool
	statusIdle         bool
	statusPruneOrphans bool
)

var statusCmd = &cobra.Command{
	Use:   "status [worktree]",
	Short: "Show or update worktree activity",
	Long: `Without arguments, show an activity summary across all worktrees.
With a worktree name, show its detail or update it via flags.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusTask, "task", "", "Set the worktree's current task")
	statusCmd.Flags().StringVar(&statusNotes, "notes", "", "Set the worktree's notes")
	statusCmd.Flags().BoolVar(&statusDone, "done", false, "Mark the worktree's task completed")
	statusCmd.Flags().BoolVar(&statusIdle, "idle", false, "Mark the worktree idle")
	statusCmd.Flags().BoolVar(&statusPruneOrphans, "prune-orphans", false, "Drop entries for worktrees that no longer exist")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	g, err := openGit()
	if err != nil {
		return err
	}
	settings := loadSettings(g.GitRoot())

	tracker, err := newTracker(settings)
	if err != nil {
		return err
	}

	var names []string
	for _, wt := range g.ListWorktrees() {
		names = append(names, wt.Name())
	}

	if statusPruneOrphans {
		removed, pruneErr := tracker.CleanupOrphans(names)
		if pruneErr != nil {
			return pruneErr
		}
		if !jsonOutput {
			for _, name := range removed {
				fmt.Println(dimStyle.Render("pruned " + name))
			}
		}
	}

	if len(args) == 1 {
		return statusForWorktree(tracker, args[0])
	}

	summary := tracker.Summary(names)
	if jsonOutput {
		return printJSON(summary)
	}

	fmt.Printf("%s  %d tracked, %s working, %s idle, %s blocked\n",
		boldStyle.Render(fmt.Sprintf("%d worktrees", summary.TotalWorktrees)),
		summary.WorktreesTracked,
		successStyle.Render(fmt.Sprint(summary.Active)),
		dimStyle.Render(fmt.Sprint(summary.Idle)),
		errorStyle.Render(fmt.Sprint(summary.Blocked)))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header("worktree", "activity", "task", "updated"))
	for _, st := range summary.Statuses {
		task := st.CurrentTask
		if task == "" {
			task = dimStyle.Render("-")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			st.WorktreeName, renderActivity(string(st.Activity)), task, relativeTime(st.UpdatedAt))
	}
	return w.Flush()
}

func statusForWorktree(tracker *status.Tracker, name string) error {
	switch {
	case statusTask != "":
		if _, err := tracker.UpdateTask(name, statusTask, status.ActivityWorking); err != nil {
			return err
		}
	case statusDone:
		if _, err := tracker.MarkCompleted(name); err != nil {
			return err
		}
	case statusIdle:
		if _, err := tracker.MarkIdle(name); err != nil {
			return err
		}
	}
	if statusNotes != "" {
		if _, err := tracker.SetNotes(name, statusNotes); err != nil {
			return err
		}
	}

	st := tracker.Get(name)
	if st == nil {
		return fmt.Errorf("no status tracked for worktree %s", name)
	}
	if jsonOutput {
		return printJSON(st)
	}

	fmt.Println(boldStyle.Render(st.WorktreeName) + dimStyle.Render(" "+st.WorktreePath))
	fmt.Printf("branch: %s  session: %s  tool: %s\n", st.Branch, st.TmuxSession, st.AITool)
	fmt.Printf("activity: %s", renderActivity(string(st.Activity)))
	if st.CurrentTask != "" {
		fmt.Printf("  task: %s", st.CurrentTask)
	}
	fmt.Println()
	if st.Notes != "" {
		fmt.Println("notes: " + st.Notes)
	}
	if len(st.RecentCommands) > 0 {
		fmt.Println(dimStyle.Render("recent commands:"))
		for _, rec := range st.RecentCommands {
			fmt.Printf("  %s  %s\n", dimStyle.Render(relativeTime(rec.Timestamp)), rec.Command)
		}
	}
	return nil
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
