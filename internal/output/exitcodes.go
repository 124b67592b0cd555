// Package output provides structured output and error handling for the datkit CLI.
package output

import (
	"errors"

	"github.com/randalmurphal/datkit/dat"
)

// Exit codes:
// 0 = Success
// 1 = User error (bad args, not a repository, unknown input format)
// 2 = System error (dat failed to run, wrote to stderr, or reported an error)
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitSystemError = 2
)

// ExitError is an error that carries an exit code for the CLI.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewUserError creates an error for user-caused issues (exit code 1).
func NewUserError(message string) *ExitError {
	return &ExitError{Code: ExitUserError, Message: message}
}

// NewSystemError creates an error for system failures (exit code 2).
func NewSystemError(message string) *ExitError {
	return &ExitError{Code: ExitSystemError, Message: message}
}

// FromError wraps err with the exit code ExitCodeFor assigns it.
// nil stays nil and an *ExitError is returned unchanged.
func FromError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: ExitCodeFor(err), Message: err.Error(), Cause: err}
}

// ExitCodeFor maps an error to a process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case dat.IsInvalidArgument(err), dat.IsNotARepository(err), dat.IsAutoDetect(err):
		return ExitUserError
	case dat.IsExecutionError(err), errors.Is(err, dat.ErrToolFailed), errors.Is(err, dat.ErrMalformedRecord):
		return ExitSystemError
	}

	// Default to user error for untyped errors
	return ExitUserError
}
