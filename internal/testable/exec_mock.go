package testable

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// MockCommandExecutor is a test double for CommandExecutor.
// It can simulate a missing binary, command failures, and canned outputs
// (including the non-zero exit ESLint uses when it reports errors).
type MockCommandExecutor struct {
	// LookPathErr, when non-nil, is returned by LookPath for any file.
	LookPathErr error

	// LookPathResult is returned as the path when LookPathErr is nil.
	LookPathResult string

	// CommandOutputs maps a command key (the command name and all arguments
	// joined by spaces) to the stdout the resulting exec.Cmd produces.
	CommandOutputs map[string]string

	// CommandErrors maps a command key to an error message. When set, the
	// resulting exec.Cmd fails with that message written to stderr.
	CommandErrors map[string]string

	// DefaultOutput is returned when no key matches in CommandOutputs.
	DefaultOutput string

	// DefaultExitCode is the exit status used together with outputs.
	DefaultExitCode int

	// DefaultError, when non-empty, makes every unmatched command fail.
	DefaultError string

	mu    sync.Mutex
	calls []string
}

// LookPath returns the configured result or error.
func (m *MockCommandExecutor) LookPath(file string) (string, error) {
	if m.LookPathErr != nil {
		return "", m.LookPathErr
	}
	if m.LookPathResult != "" {
		return m.LookPathResult, nil
	}
	return "/usr/local/bin/" + file, nil
}

// CommandContext returns an *exec.Cmd that, when executed, produces the
// pre-configured output or error through sh.
func (m *MockCommandExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	key := name + " " + strings.Join(args, " ")
	m.mu.Lock()
	m.calls = append(m.calls, key)
	m.mu.Unlock()

	if errMsg, ok := m.CommandErrors[key]; ok {
		return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("echo %q >&2; exit 2", errMsg)) //nolint:gosec // test helper
	}
	if out, ok := m.CommandOutputs[key]; ok {
		return m.printCmd(ctx, out)
	}
	if m.DefaultError != "" {
		return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("echo %q >&2; exit 2", m.DefaultError)) //nolint:gosec // test helper
	}
	return m.printCmd(ctx, m.DefaultOutput)
}

func (m *MockCommandExecutor) printCmd(ctx context.Context, out string) *exec.Cmd {
	script := fmt.Sprintf("cat >/dev/null; printf '%%s' %q; exit %d", out, m.DefaultExitCode)
	return exec.CommandContext(ctx, "sh", "-c", script) //nolint:gosec // test helper
}

// Calls returns the command keys invoked so far.
func (m *MockCommandExecutor) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
