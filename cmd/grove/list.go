package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/pr"
)

var listPRs bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List worktrees with session and activity state",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolVar(&listPRs, "prs", false, "Include pull request status (needs an API token)")
	rootCmd.AddCommand(listCmd)
}

type listEntry struct {
	Name     string `json:"name"`
	Branch   string `json:"branch"`
	Path     string `json:"path"`
	IsMain   bool   `json:"is_main"`
	Activity string `json:"activity,omitempty"`
	Session  string `json:"session,omitempty"`
	PRState  string `json:"pr_state,omitempty"`
	PRURL    string `json:"pr_url,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	g, err := openGit()
	if err != nil {
		return err
	}
	settings := loadSettings(g.GitRoot())

	tracker, err := newTracker(settings)
	if err != nil {
		return err
	}
	tm := newTmux(settings)

	var provider pr.Provider
	if listPRs {
		remoteURL, remoteErr := g.GetRemoteURL("origin")
		if remoteErr != nil {
			return fmt.Errorf("resolve origin remote: %w", remoteErr)
		}
		provider, err = pr.ProviderFromEnv(remoteURL)
		if err != nil {
			return err
		}
	}

	var entries []listEntry
	for _, wt := range g.ListWorktrees() {
		entry := listEntry{
			Name:   wt.Name(),
			Branch: wt.Branch,
			Path:   wt.Path,
			IsMain: wt.IsMain,
		}
		if st := tracker.Get(wt.Name()); st != nil {
			entry.Activity = string(st.Activity)
		}
		if info := tm.SessionForWorktree(wt.Name()); info != nil {
			entry.Session = info.Name
		}
		if provider != nil && !wt.IsMain && !wt.IsDetached {
			switch pull, prErr := provider.StatusForBranch(cmd.Context(), wt.Branch); {
			case prErr == nil:
				entry.PRState = string(pull.State)
				if pull.Draft {
					entry.PRState = "draft"
				}
				entry.PRURL = pull.URL
			case errors.Is(prErr, pr.ErrNotFound):
				entry.PRState = "none"
			default:
				entry.PRState = "error"
			}
		}
		entries = append(entries, entry)
	}

	if jsonOutput {
		return printJSON(entries)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if listPRs {
		fmt.Fprintln(w, header("worktree", "branch", "activity", "session", "pr"))
	} else {
		fmt.Fprintln(w, header("worktree", "branch", "activity", "session"))
	}
	for _, e := range entries {
		name := e.Name
		if e.IsMain {
			name += dimStyle.Render(" (main)")
		}
		session := e.Session
		if session == "" {
			session = dimStyle.Render("-")
		}
		activity := renderActivity(e.Activity)
		if listPRs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, e.Branch, activity, session, renderPRState(e.PRState))
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, e.Branch, activity, session)
		}
	}
	return w.Flush()
}

func renderActivity(activity string) string {
	switch activity {
	case "working":
		return successStyle.Render(activity)
	case "blocked":
		return errorStyle.Render(activity)
	case "":
		return dimStyle.Render("-")
	default:
		return activity
	}
}

func renderPRState(state string) string {
	switch state {
	case "open":
		return successStyle.Render(state)
	case "merged":
		return boldStyle.Render(state)
	case "error":
		return errorStyle.Render(state)
	case "", "none":
		return dimStyle.Render("-")
	default:
		return dimStyle.Render(state)
	}
}
