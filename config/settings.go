package config

import (
	"strconv"
	"strings"
)

// Settings is the typed view of the merged configuration.
type Settings struct {
	Worktree WorktreeSettings
	Tmux     TmuxSettings
	AI       AISettings
	Env      EnvSettings
	Sync     SyncSettings
	Status   StatusSettings
	Notify   NotifySettings
}

type WorktreeSettings struct {
	BaseDir         string // Parent dir for new worktrees ("" = repo parent)
	AutoCleanupDays int    // Staleness threshold for cleanup
}

type TmuxSettings struct {
	SessionPrefix string
	Layout        string
	PaneCount     int
	AutoStartAI   bool
}

type AISettings struct {
	Tool string
}

type EnvSettings struct {
	AutoInstallDeps bool
	CopyEnvFile     bool
	AdjustEnvPaths  bool
	ExtraEnvFiles   []string
}

type SyncSettings struct {
	Strategy  string
	AutoStash bool
	Prune     bool
}

type StatusSettings struct {
	Path              string
	MaxCommandHistory int
	RedactCommands    bool
}

type NotifySettings struct {
	WebhookURL      string
	SlackWebhookURL string
}

// Settings assembles the typed configuration from resolved values.
// Malformed numbers and booleans fall back to their defaults.
func (c *Resolved) Settings() Settings {
	return Settings{
		Worktree: WorktreeSettings{
			BaseDir:         c.Get("worktree.base_dir"),
			AutoCleanupDays: c.intValue("worktree.auto_cleanup_days"),
		},
		Tmux: TmuxSettings{
			SessionPrefix: c.Get("tmux.session_prefix"),
			Layout:        c.Get("tmux.layout"),
			PaneCount:     c.intValue("tmux.pane_count"),
			AutoStartAI:   c.boolValue("tmux.auto_start_ai"),
		},
		AI: AISettings{
			Tool: c.Get("ai.tool"),
		},
		Env: EnvSettings{
			AutoInstallDeps: c.boolValue("env.auto_install_deps"),
			CopyEnvFile:     c.boolValue("env.copy_env_file"),
			AdjustEnvPaths:  c.boolValue("env.adjust_env_paths"),
			ExtraEnvFiles:   splitList(c.Get("env.extra_env_files")),
		},
		Sync: SyncSettings{
			Strategy:  c.Get("sync.strategy"),
			AutoStash: c.boolValue("sync.auto_stash"),
			Prune:     c.boolValue("sync.prune"),
		},
		Status: StatusSettings{
			Path:              c.Get("status.path"),
			MaxCommandHistory: c.intValue("status.max_command_history"),
			RedactCommands:    c.boolValue("status.redact_commands"),
		},
		Notify: NotifySettings{
			WebhookURL:      c.Get("notify.webhook_url"),
			SlackWebhookURL: c.Get("notify.slack_webhook_url"),
		},
	}
}

func (c *Resolved) intValue(key string) int {
	if n, err := strconv.Atoi(c.Get(key)); err == nil {
		return n
	}
	n, _ := strconv.Atoi(Defaults[key])
	return n
}

func (c *Resolved) boolValue(key string) bool {
	if b, err := strconv.ParseBool(c.Get(key)); err == nil {
		return b
	}
	b, _ := strconv.ParseBool(Defaults[key])
	return b
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
