package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to upper-cased keys for environment lookup:
// "tmux.layout" resolves from GROVE_TMUX_LAYOUT.
const EnvPrefix = "GROVE_"

// GlobalConfigDir is the directory under ~/.config/ holding the global
// config file.
const GlobalConfigDir = "grove"

// LocalConfigName is the per-repository config file in the git root.
const LocalConfigName = ".grove.yaml"

// Defaults holds the built-in value for every known key. The key set
// doubles as the list of valid keys for `grove config set`.
var Defaults = map[string]string{
	"worktree.base_dir":          "",
	"worktree.auto_cleanup_days": "14",

	"tmux.session_prefix": "grove",
	"tmux.layout":         "main-vertical",
	"tmux.pane_count":     "2",
	"tmux.auto_start_ai":  "true",

	"ai.tool": "claude",

	"env.auto_install_deps": "true",
	"env.copy_env_file":     "true",
	"env.adjust_env_paths":  "true",
	"env.extra_env_files":   "",

	"sync.strategy":   "merge",
	"sync.auto_stash": "false",
	"sync.prune":      "true",

	"status.path":                "",
	"status.max_command_history": "20",
	"status.redact_commands":     "true",

	"notify.webhook_url":       "",
	"notify.slack_webhook_url": "",
}

// Resolver merges configuration layers for one invocation.
type Resolver struct {
	globalPath string
	localPath  string
	errWriter  io.Writer

	// Warnings collects non-fatal issues hit during resolution.
	Warnings []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithPaths pins the global and local config file locations, for tests.
func WithPaths(globalPath, localPath string) Option {
	return func(r *Resolver) {
		r.globalPath = globalPath
		r.localPath = localPath
	}
}

// WithErrWriter redirects resolution warnings.
func WithErrWriter(w io.Writer) Option {
	return func(r *Resolver) { r.errWriter = w }
}

// NewResolver creates a resolver. gitRoot locates the local config file;
// pass "" when outside a repository.
func NewResolver(gitRoot string, opts ...Option) *Resolver {
	r := &Resolver{errWriter: os.Stderr}

	if home, err := os.UserHomeDir(); err == nil {
		r.globalPath = filepath.Join(home, ".config", GlobalConfigDir, "config.yaml")
	}
	if gitRoot != "" {
		r.localPath = filepath.Join(gitRoot, LocalConfigName)
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GlobalPath returns the global config file location.
func (r *Resolver) GlobalPath() string { return r.globalPath }

// LocalPath returns the local config file location, or "".
func (r *Resolver) LocalPath() string { return r.localPath }

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	if r.errWriter != nil {
		fmt.Fprintf(r.errWriter, "Warning: %s\n", msg)
	}
}

// Resolved is the merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for a key, or "" if unset.
func (c *Resolved) Get(key string) string { return c.values[key] }

// GetWithSource returns a value and where it came from.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// Keys returns every known key, sorted.
func (c *Resolved) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve merges defaults, global file, local file, and environment.
func (r *Resolver) Resolve() *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string, len(Defaults)),
		sources: make(map[string]Source, len(Defaults)),
	}

	for key, value := range Defaults {
		cfg.values[key] = value
		cfg.sources[key] = SourceDefault
	}

	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.localPath, SourceLocal)
	r.applyEnv(cfg)

	return cfg
}

// ResolveWithFlags resolves and then applies non-empty flag overrides.
func (r *Resolver) ResolveWithFlags(flags map[string]string) *Resolved {
	cfg := r.Resolve()
	for key, value := range flags {
		if value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceFlag
		}
	}
	return cfg
}

// applyFile folds one YAML file into the resolution. A missing file is
// fine; a malformed one is a warning, not an error.
func (r *Resolver) applyFile(cfg *Resolved, path string, source Source) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn(fmt.Sprintf("could not parse %s: %v", path, err))
		return
	}

	for key, value := range flattenYAML("", parsed) {
		if _, known := Defaults[key]; !known {
			r.warn(fmt.Sprintf("%s: unknown key %q", path, key))
			continue
		}
		if strVal := toString(value); strVal != "" {
			cfg.values[key] = strVal
			cfg.sources[key] = source
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	for key := range Defaults {
		envKey := EnvPrefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
		if value := os.Getenv(envKey); value != "" {
			cfg.values[key] = value
			cfg.sources[key] = SourceEnv
		}
	}
}

// flattenYAML turns nested YAML maps into dotted keys, so both
// "tmux.layout: quad" and "tmux:\n  layout: quad" work.
func flattenYAML(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range m {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenYAML(full, nested) {
				out[k] = v
			}
			continue
		}
		out[full] = value
	}
	return out
}

func toString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int, int64, float64:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}
