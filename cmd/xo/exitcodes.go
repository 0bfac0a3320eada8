package main

import "fmt"

// Exit codes for the xo CLI.
const (
	ExitOK          = 0 // No error-severity problems.
	ExitLintErrors  = 1 // At least one error-severity problem was reported.
	ExitConfigError = 2 // Configuration or engine setup failed.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
// An empty msg prints nothing.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

func exitError(code int, format string, args ...any) *exitCodeError {
	return &exitCodeError{code: code, msg: fmt.Sprintf(format, args...)}
}

// configFailure maps an error from configuration resolution or engine setup
// to ExitConfigError.
func configFailure(err error) *exitCodeError {
	return exitError(ExitConfigError, "xo: %v", err)
}
