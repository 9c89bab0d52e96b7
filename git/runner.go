package git

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner executes external commands. The default implementation
// shells out; tests inject a MockRunner.
type CommandRunner interface {
	// Run executes name with args in workDir and returns trimmed stdout.
	// A non-zero exit returns a *CommandError carrying combined output.
	Run(workDir string, name string, args ...string) (string, error)
}

// CommandError wraps a failed command with its output.
type CommandError struct {
	Command string   // Binary that was run
	Args    []string // Arguments passed
	Output  string   // Combined stdout/stderr
	Err     error    // Underlying error (exit status, timeout)
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// DefaultCommandTimeout bounds a single external command invocation.
// Long-running operations (fetch, pull) pass their own budget.
const DefaultCommandTimeout = 30 * time.Second

// ExecRunner runs commands via os/exec with a per-call timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates a runner with the default timeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Timeout: DefaultCommandTimeout}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(workDir string, name string, args ...string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if workDir != "" {
		cmd.Dir = workDir
	}

	output, err := cmd.CombinedOutput()
	trimmed := strings.TrimSpace(string(output))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = ctx.Err()
		}
		return trimmed, &CommandError{
			Command: name,
			Args:    args,
			Output:  trimmed,
			Err:     err,
		}
	}
	return trimmed, nil
}

// MockResponse is a canned response for MockRunner.
type MockResponse struct {
	Stdout string
	Err    error
}

// MockCall records a single invocation of MockRunner.Run.
type MockCall struct {
	WorkDir string
	Command string
	Args    []string
}

// MockRunner is a CommandRunner for tests. Responses are keyed by the full
// command line ("git status --short"), by command name alone, or by the "*"
// wildcard; DefaultResponse answers anything else.
type MockRunner struct {
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []MockCall
}

// NewMockRunner creates an empty mock runner.
func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

// mockStub allows OnCommand(...).Return(...) chaining.
type mockStub struct {
	runner *MockRunner
	key    string
}

// OnCommand registers a response for the exact command line.
func (m *MockRunner) OnCommand(name string, args ...string) *mockStub {
	key := name
	if len(args) > 0 {
		key = name + " " + strings.Join(args, " ")
	}
	return &mockStub{runner: m, key: key}
}

// OnAnyCommand registers a wildcard response.
func (m *MockRunner) OnAnyCommand() *mockStub {
	return &mockStub{runner: m, key: "*"}
}

// Return sets the canned response for the stubbed command.
func (s *mockStub) Return(stdout string, err error) {
	s.runner.Responses[s.key] = MockResponse{Stdout: stdout, Err: err}
}

// Run implements CommandRunner.
func (m *MockRunner) Run(workDir string, name string, args ...string) (string, error) {
	m.Calls = append(m.Calls, MockCall{WorkDir: workDir, Command: name, Args: args})

	full := name
	if len(args) > 0 {
		full = name + " " + strings.Join(args, " ")
	}
	if resp, ok := m.Responses[full]; ok {
		return resp.Stdout, resp.Err
	}
	if resp, ok := m.Responses[name]; ok {
		return resp.Stdout, resp.Err
	}
	if resp, ok := m.Responses["*"]; ok {
		return resp.Stdout, resp.Err
	}
	return m.DefaultResponse.Stdout, m.DefaultResponse.Err
}

// WasCalled reports whether a call matching the command (and leading args,
// if given) was made.
func (m *MockRunner) WasCalled(name string, args ...string) bool {
	for _, call := range m.Calls {
		if call.Command != name {
			continue
		}
		if len(args) > len(call.Args) {
			continue
		}
		match := true
		for i, a := range args {
			if call.Args[i] != a {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
