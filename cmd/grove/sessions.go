package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionsAll bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List tmux sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessions,
}

func init() {
	sessionsCmd.Flags().BoolVarP(&sessionsAll, "all", "a", false, "Include sessions outside the grove prefix")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	settings := loadSettings(gitRootOrEmpty())
	tm := newTmux(settings)

	sessions := tm.ListSessions(!sessionsAll)
	if jsonOutput {
		return printJSON(sessions)
	}

	if len(sessions) == 0 {
		fmt.Println(dimStyle.Render("no sessions"))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, header("session", "windows", "created", "attached"))
	for _, s := range sessions {
		attached := dimStyle.Render("-")
		if s.Attached {
			attached = successStyle.Render("yes")
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", s.Name, s.Windows, relativeTime(s.CreatedAt), attached)
	}
	return w.Flush()
}

// gitRootOrEmpty resolves the repository root for config layering, or ""
// when run outside a repository.
func gitRootOrEmpty() string {
	if g, err := openGit(); err == nil {
		return g.GitRoot()
	}
	return ""
}
