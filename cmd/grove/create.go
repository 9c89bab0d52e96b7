package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/grovekit/grove/cleanup"
	"github.com/grovekit/grove/git"
	"github.com/grovekit/grove/project"
	"github.com/grovekit/grove/tmux"
	"github.com/grovekit/grove/workflow"
)

var (
	createBase   string
	createForce  bool
	createNoEnv  bool
	createNoAI   bool
	createTool   string
	createLayout string
	createPanes  int
)

var createCmd = &cobra.Command{
	Use:   "create <branch>",
	Short: "Create a worktree with a tmux session and AI assistant",
	Long: `Create a git worktree for the branch, set up its development
environment, start a tmux session laid out for the work, and launch the
configured AI assistant in the main pane.

The branch is created from the base branch if it does not exist yet.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createBase, "base", "b", "", "Base branch for a new branch (default: current branch)")
	createCmd.Flags().BoolVarP(&createForce, "force", "f", false, "Allow a second worktree for an existing branch")
	createCmd.Flags().BoolVar(&createNoEnv, "no-env", false, "Skip environment setup (deps, .env files)")
	createCmd.Flags().BoolVar(&createNoAI, "no-ai", false, "Do not start the AI assistant")
	createCmd.Flags().StringVar(&createTool, "tool", "", "AI tool to launch (claude, opencode, droid)")
	createCmd.Flags().StringVar(&createLayout, "layout", "", "tmux pane layout")
	createCmd.Flags().IntVar(&createPanes, "panes", 0, "Pane count for variable layouts")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	branch := args[0]

	g, err := openGit()
	if err != nil {
		return err
	}
	settings := loadSettings(g.GitRoot())

	tracker, err := newTracker(settings)
	if err != nil {
		return err
	}

	layout := settings.Tmux.Layout
	if createLayout != "" {
		layout = createLayout
	}
	panes := settings.Tmux.PaneCount
	if createPanes > 0 {
		panes = createPanes
	}
	tool := settings.AI.Tool
	if createTool != "" {
		tool = createTool
	}
	autoStart := settings.Tmux.AutoStartAI && !createNoAI

	svcs := workflow.Services{
		Git:      g,
		Tmux:     newTmux(settings),
		Tracker:  tracker,
		Notifier: newNotifier(settings),
	}
	if !createNoEnv {
		svcs.Env = &workflow.ProjectPreparer{
			Root: g.GitRoot(),
			Options: project.SetupOptions{
				InstallDeps:   settings.Env.AutoInstallDeps,
				CopyEnv:       settings.Env.CopyEnvFile,
				AdjustPaths:   settings.Env.AdjustEnvPaths,
				ExtraEnvFiles: settings.Env.ExtraEnvFiles,
			},
		}
	}

	state := workflow.NewState(branch).
		WithBaseBranch(createBase).
		WithForce(createForce).
		WithSession(tmux.Layout(layout), panes).
		WithAITool(tool, autoStart)
	if settings.Worktree.BaseDir != "" {
		name := g.ProjectName() + "-" + git.SanitizeBranchName(branch)
		state = state.WithTargetPath(filepath.Join(settings.Worktree.BaseDir, name))
	}

	out, err := workflow.RunCreate(svcs.InjectAll(cmd.Context()), state)
	if err != nil {
		return err
	}

	if ut, utErr := cleanup.NewUsageTracker(""); utErr == nil {
		_ = ut.RecordAccess(out.WorktreePath, out.Branch)
	}

	if jsonOutput {
		return printJSON(out)
	}

	fmt.Printf("%s created worktree %s %s\n",
		successStyle.Render("✓"),
		boldStyle.Render(out.WorktreeName),
		dimStyle.Render(out.WorktreePath))
	if out.SessionName != "" {
		fmt.Printf("%s tmux session %s\n", successStyle.Render("✓"), boldStyle.Render(out.SessionName))
		fmt.Println(dimStyle.Render("  attach with: grove switch " + out.WorktreeName))
	}
	for _, w := range out.Warnings {
		fmt.Println(warnStyle.Render("! " + w))
	}
	return nil
}
