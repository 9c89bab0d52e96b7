package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/grovekit/grove/config"
	"github.com/grovekit/grove/git"
	"github.com/grovekit/grove/notify"
	"github.com/grovekit/grove/status"
	"github.com/grovekit/grove/tmux"
)

var (
	jsonOutput bool
	verbose    bool
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8B5CF6"))
)

// titler renders table headers ("worktree" -> "Worktree").
var titler = cases.Title(language.English)

var rootCmd = &cobra.Command{
	Use:   "grove",
	Short: "Parallel development with git worktrees, tmux, and AI assistants",
	Long: `Grove manages one development environment per branch: a git worktree,
a tmux session laid out for the work, and an AI coding assistant started
inside it. Worktree activity is tracked so you can see at a glance what
every branch is doing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := charmlog.WarnLevel
		if verbose {
			level = charmlog.DebugLevel
		}
		logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Prefix: "grove",
			Level:  level,
		})
		slog.SetDefault(slog.New(logger))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// openGit binds a git context to the repository containing the current
// directory.
func openGit() (*git.Context, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	return git.NewContext(cwd)
}

// loadSettings resolves configuration for the repository. gitRoot may be
// empty for commands that run outside a repository.
func loadSettings(gitRoot string) config.Settings {
	return config.NewResolver(gitRoot).Resolve().Settings()
}

func newTracker(settings config.Settings) (*status.Tracker, error) {
	cfg := status.DefaultConfig()
	cfg.StoragePath = settings.Status.Path
	if settings.Status.MaxCommandHistory > 0 {
		cfg.MaxCommandHistory = settings.Status.MaxCommandHistory
	}
	cfg.RedactCommands = settings.Status.RedactCommands
	return status.NewTracker(cfg)
}

func newTmux(settings config.Settings) *tmux.Manager {
	return tmux.NewManager(tmux.WithPrefix(settings.Tmux.SessionPrefix))
}

func newNotifier(settings config.Settings) notify.Notifier {
	return notify.FromWebhooks(settings.Notify.WebhookURL, settings.Notify.SlackWebhookURL)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func header(cols ...string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += "\t"
		}
		out += headerStyle.Render(titler.String(c))
	}
	return out
}
