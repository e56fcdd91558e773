package errors

import (
	"errors"
	"fmt"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// CommandError represents an error that occurred during command execution together with the exit code to report.
type CommandError struct {
	ExitCode int
	Err      error
}

// Error implements the error interface, returning the message from the wrapped error.
func (e *CommandError) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError instance wrapping err with the given exit code.
func NewCommandError(err error, code int) *CommandError {
	return &CommandError{
		ExitCode: code,
		Err:      err,
	}
}

// NewUsageError creates a CommandError for invalid arguments or configuration.
func NewUsageError(format string, a ...interface{}) *CommandError {
	return NewCommandError(fmt.Errorf(format, a...), ExitUsage)
}

// ExitCodeOf maps err to a process exit code. Errors that are not a CommandError map to ExitFailure.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return ExitFailure
}
