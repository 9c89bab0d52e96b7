package tmux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Layout selects how a new session's panes are arranged.
type Layout string

const (
	// LayoutMainVertical is a large left pane with smaller panes on the right.
	LayoutMainVertical Layout = "main-vertical"
	// LayoutThreePane is a full-width top pane over two bottom panes.
	LayoutThreePane Layout = "three-pane"
	// LayoutQuad is four equal quadrants.
	LayoutQuad Layout = "quad"
	// LayoutEvenHorizontal is N equal side-by-side panes.
	LayoutEvenHorizontal Layout = "even-horizontal"
	// LayoutEvenVertical is N equal stacked panes.
	LayoutEvenVertical Layout = "even-vertical"
)

// Valid reports whether l names a known layout.
func (l Layout) Valid() bool {
	switch l {
	case LayoutMainVertical, LayoutThreePane, LayoutQuad, LayoutEvenHorizontal, LayoutEvenVertical:
		return true
	}
	return false
}

// DefaultSessionPrefix namespaces sessions created by this tool.
const DefaultSessionPrefix = "grove"

// Session operation errors.
var (
	ErrSessionNotFound = errors.New("tmux session not found")
	ErrSessionExists   = errors.New("tmux session already exists")
)

// Error wraps a failed tmux operation.
type Error struct {
	Op     string
	Output string
	Err    error
}

func (e *Error) Error() string {
	if e.Output != "" {
		return e.Op + ": " + e.Output
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Runner executes external commands. Satisfied by git.ExecRunner; tests
// supply a scripted fake.
type Runner interface {
	Run(workDir string, name string, args ...string) (string, error)
}

// execRunner is the default Runner, bounding each tmux call at 10s.
type execRunner struct{}

func (execRunner) Run(workDir string, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	output, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(output))
	if err != nil {
		return trimmed, fmt.Errorf("%s %s: %s", name, strings.Join(args, " "), nonEmpty(trimmed, err.Error()))
	}
	return trimmed, nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// SessionConfig describes a session to create.
type SessionConfig struct {
	Name         string // Session name (required)
	WorkDir      string // Start directory for every pane (required)
	Layout       Layout // Pane arrangement (default main-vertical)
	PaneCount    int    // Pane count for variable layouts (default 2)
	WindowName   string // First window name (default "main")
	StartCommand string // Command typed into the first pane, if any
}

// SessionInfo describes an existing session.
type SessionInfo struct {
	Name      string    `json:"name"`
	ID        string    `json:"id"`
	Windows   int       `json:"windows"`
	CreatedAt time.Time `json:"created_at"`
	Attached  bool      `json:"attached"`
}

// Manager drives the tmux binary.
type Manager struct {
	prefix string
	runner Runner
}

// Option configures a Manager.
type Option func(*Manager)

// WithRunner replaces the command runner, primarily for tests.
func WithRunner(r Runner) Option {
	return func(m *Manager) { m.runner = r }
}

// WithPrefix overrides the session name prefix.
func WithPrefix(prefix string) Option {
	return func(m *Manager) { m.prefix = prefix }
}

// NewManager creates a tmux manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{prefix: DefaultSessionPrefix, runner: execRunner{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Prefix returns the session name prefix in use.
func (m *Manager) Prefix() string {
	return m.prefix
}

// SessionName derives the session name for a worktree: the prefix plus the
// worktree name with "/" and "." replaced by "-". Deterministic, so the
// same worktree always maps to the same session.
func (m *Manager) SessionName(worktreeName string) string {
	sanitized := strings.NewReplacer("/", "-", ".", "-").Replace(worktreeName)
	return m.prefix + "-" + sanitized
}

// HasSession reports whether a session with the exact name exists.
func (m *Manager) HasSession(name string) bool {
	// The "=" prefix forces exact matching instead of tmux's prefix match.
	_, err := m.run("has-session", "-t", "="+name)
	return err == nil
}

// CreateSession creates a detached session with the configured layout and
// optionally types the start command into the first pane.
func (m *Manager) CreateSession(cfg SessionConfig) (*SessionInfo, error) {
	if cfg.Name == "" {
		return nil, &Error{Op: "create session", Err: errors.New("session name is required")}
	}
	if m.HasSession(cfg.Name) {
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, cfg.Name)
	}
	if info, err := os.Stat(cfg.WorkDir); err != nil || !info.IsDir() {
		return nil, &Error{Op: "create session", Err: fmt.Errorf("working directory does not exist: %s", cfg.WorkDir)}
	}

	layout := cfg.Layout
	if layout == "" {
		layout = LayoutMainVertical
	}
	if !layout.Valid() {
		return nil, &Error{Op: "create session", Err: fmt.Errorf("unknown layout %q", layout)}
	}
	paneCount := cfg.PaneCount
	if paneCount < 1 {
		paneCount = 2
	}
	windowName := cfg.WindowName
	if windowName == "" {
		windowName = "main"
	}

	if _, err := m.run("new-session", "-d", "-s", cfg.Name, "-c", cfg.WorkDir, "-n", windowName); err != nil {
		return nil, &Error{Op: "create session", Err: err}
	}

	if err := m.applyLayout(cfg.Name, cfg.WorkDir, layout, paneCount); err != nil {
		// Leave no half-built session behind.
		m.run("kill-session", "-t", "="+cfg.Name)
		return nil, err
	}

	if cfg.StartCommand != "" {
		if _, err := m.run("send-keys", "-t", cfg.Name+":0.0", cfg.StartCommand, "Enter"); err != nil {
			return nil, &Error{Op: "start command", Err: err}
		}
	}

	return m.sessionInfo(cfg.Name)
}

// applyLayout splits the first window into the requested arrangement and
// leaves the first pane selected.
func (m *Manager) applyLayout(session, workDir string, layout Layout, paneCount int) error {
	target := session + ":0"

	split := func(flag string, splitTarget string) error {
		args := []string{"split-window", flag, "-c", workDir, "-t", splitTarget}
		if _, err := m.run(args...); err != nil {
			return &Error{Op: "split pane", Err: err}
		}
		return nil
	}
	selectLayout := func(name string) error {
		if _, err := m.run("select-layout", "-t", target, name); err != nil {
			return &Error{Op: "select layout", Err: err}
		}
		return nil
	}

	switch layout {
	case LayoutMainVertical:
		for i := 0; i < paneCount-1; i++ {
			if err := split("-h", target); err != nil {
				return err
			}
		}
		if err := selectLayout("main-vertical"); err != nil {
			return err
		}
	case LayoutThreePane:
		// Top pane over two bottom panes.
		if err := split("-v", target); err != nil {
			return err
		}
		if err := split("-h", target+".1"); err != nil {
			return err
		}
	case LayoutQuad:
		if err := split("-h", target); err != nil {
			return err
		}
		if err := split("-v", target+".0"); err != nil {
			return err
		}
		if err := split("-v", target+".2"); err != nil {
			return err
		}
		if err := selectLayout("tiled"); err != nil {
			return err
		}
	case LayoutEvenHorizontal:
		for i := 0; i < paneCount-1; i++ {
			if err := split("-h", target); err != nil {
				return err
			}
		}
		if err := selectLayout("even-horizontal"); err != nil {
			return err
		}
	case LayoutEvenVertical:
		for i := 0; i < paneCount-1; i++ {
			if err := split("-v", target); err != nil {
				return err
			}
		}
		if err := selectLayout("even-vertical"); err != nil {
			return err
		}
	}

	if _, err := m.run("select-pane", "-t", target+".0"); err != nil {
		return &Error{Op: "select pane", Err: err}
	}
	return nil
}

// Attach attaches the calling terminal to a session. Use SwitchClient when
// already inside tmux.
func (m *Manager) Attach(name string) error {
	if !m.HasSession(name) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	cmd := exec.Command("tmux", "attach-session", "-t", "="+name)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &Error{Op: "attach session", Err: err}
	}
	return nil
}

// SwitchClient switches the current tmux client to another session.
func (m *Manager) SwitchClient(name string) error {
	if !m.HasSession(name) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	if _, err := m.run("switch-client", "-t", "="+name); err != nil {
		return &Error{Op: "switch client", Err: err}
	}
	return nil
}

// sessionListFormat captures the fields ListSessions parses.
const sessionListFormat = "#{session_name}\t#{session_id}\t#{session_windows}\t#{session_created}\t#{session_attached}"

// ListSessions lists sessions. With filterPrefix, only sessions created by
// this tool (name starts with the prefix) are returned. A stopped tmux
// server yields an empty list.
func (m *Manager) ListSessions(filterPrefix bool) []SessionInfo {
	output, err := m.run("list-sessions", "-F", sessionListFormat)
	if err != nil {
		return nil
	}

	var sessions []SessionInfo
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			continue
		}
		if filterPrefix && !strings.HasPrefix(fields[0], m.prefix+"-") {
			continue
		}
		windows, _ := strconv.Atoi(fields[2])
		createdUnix, _ := strconv.ParseInt(fields[3], 10, 64)
		attached, _ := strconv.Atoi(fields[4])
		sessions = append(sessions, SessionInfo{
			Name:      fields[0],
			ID:        fields[1],
			Windows:   windows,
			CreatedAt: time.Unix(createdUnix, 0),
			Attached:  attached > 0,
		})
	}
	return sessions
}

// sessionInfo looks up a single session by exact name.
func (m *Manager) sessionInfo(name string) (*SessionInfo, error) {
	for _, s := range m.ListSessions(false) {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, name)
}

// SessionForWorktree finds the session belonging to a worktree, or nil.
func (m *Manager) SessionForWorktree(worktreeName string) *SessionInfo {
	info, err := m.sessionInfo(m.SessionName(worktreeName))
	if err != nil {
		return nil
	}
	return info
}

// KillSession terminates a session.
func (m *Manager) KillSession(name string) error {
	if !m.HasSession(name) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, name)
	}
	if _, err := m.run("kill-session", "-t", "="+name); err != nil {
		return &Error{Op: "kill session", Err: err}
	}
	return nil
}

// SendKeys types text (followed by Enter) into a specific pane.
func (m *Manager) SendKeys(session, text string, paneIndex, windowIndex int) error {
	if !m.HasSession(session) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, session)
	}
	pane := fmt.Sprintf("%s:%d.%d", session, windowIndex, paneIndex)
	if _, err := m.run("send-keys", "-t", pane, text, "Enter"); err != nil {
		return &Error{Op: "send keys", Err: err}
	}
	return nil
}

// InsideTmux reports whether the current process runs inside a tmux client.
func InsideTmux() bool {
	return os.Getenv("TMUX") != ""
}

// CurrentSessionName returns the surrounding session's name, or "" when
// not inside tmux.
func (m *Manager) CurrentSessionName() string {
	if !InsideTmux() {
		return ""
	}
	name, err := m.run("display-message", "-p", "#S")
	if err != nil {
		return ""
	}
	return name
}

func (m *Manager) run(args ...string) (string, error) {
	return m.runner.Run("", "tmux", args...)
}
