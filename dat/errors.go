package dat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/datkit/ndjson"
)

// Sentinel errors for dat operations.
var (
	// ErrInvalidArgument indicates a local precondition failed before dat was run.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoImportSource indicates Import was given neither a file nor data.
	ErrNoImportSource = fmt.Errorf("%w: you must provide either a file or (string) data", ErrInvalidArgument)

	// ErrConflictingImportSource indicates Import was given both a file and data.
	ErrConflictingImportSource = fmt.Errorf("%w: provide a file or data, not both", ErrInvalidArgument)

	// ErrEmptyData indicates Import was given data of zero length.
	ErrEmptyData = fmt.Errorf("%w: data cannot be empty", ErrInvalidArgument)

	// ErrMissingDataset indicates an operation needs a dataset name.
	ErrMissingDataset = fmt.Errorf("%w: dataset is required", ErrInvalidArgument)

	// ErrMissingRef indicates Diff was called without a starting reference.
	ErrMissingRef = fmt.Errorf("%w: a version reference is required", ErrInvalidArgument)

	// ErrMissingRemote indicates push, pull, or replicate without a remote.
	ErrMissingRemote = fmt.Errorf("%w: remote is required", ErrInvalidArgument)

	// ErrInvalidBatchSize indicates a batch size below one.
	ErrInvalidBatchSize = ndjson.ErrInvalidBatchSize

	// ErrEmptyResponse indicates dat printed nothing where a record was expected.
	ErrEmptyResponse = errors.New("dat returned no output")

	// ErrMalformedRecord indicates a record lacks a field the operation relies on.
	ErrMalformedRecord = errors.New("malformed dat record")

	// ErrToolNotFound indicates the dat binary could not be started.
	ErrToolNotFound = errors.New("dat binary not found")

	// ErrToolFailed matches every error record dat reports.
	ErrToolFailed = errors.New("dat reported an error")

	// ErrNotARepository matches error records saying the directory is not a dat repository.
	ErrNotARepository = errors.New("not a dat repository")

	// ErrAutoDetectType matches error records saying dat could not infer the input format.
	ErrAutoDetectType = errors.New("could not auto detect input type")
)

// Error wraps dat errors with the operation that failed.
type Error struct {
	Op  string // Operation that failed ("init", "import", "diff", ...)
	Err error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("dat %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new dat error.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// ExecutionError means dat wrote to standard error, or could not be run at all.
// The command is treated as never having taken effect.
type ExecutionError struct {
	Command string // Rendered command line
	Stderr  string // Standard error, verbatim
	Err     error  // Process error, if any
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return "dat execution failed: " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("dat execution failed: %v", e.Err)
	}
	return "dat execution failed"
}

// Unwrap returns the process error for errors.Is/As support.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies an error record printed by dat.
type ErrorKind int

// Error record kinds.
const (
	KindGeneric ErrorKind = iota
	KindNotARepository
	KindAutoDetect
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindNotARepository:
		return "not_a_repository"
	case KindAutoDetect:
		return "auto_detect"
	default:
		return "generic"
	}
}

// ToolError is an error record dat printed on standard output.
type ToolError struct {
	Kind    ErrorKind
	Message string       // Message field, verbatim
	Record  ndjson.Value // The full record
}

// Error returns the message dat reported.
func (e *ToolError) Error() string {
	return e.Message
}

// Is matches ErrToolFailed for every kind, and the kind's own sentinel.
func (e *ToolError) Is(target error) bool {
	switch target {
	case ErrToolFailed:
		return true
	case ErrNotARepository:
		return e.Kind == KindNotARepository
	case ErrAutoDetectType:
		return e.Kind == KindAutoDetect
	}
	return false
}

// IsExecutionError reports whether err came from dat writing to standard error or
// failing to run.
func IsExecutionError(err error) bool {
	var execErr *ExecutionError
	return errors.As(err, &execErr)
}

// IsNotARepository reports whether dat said the directory holds no repository.
func IsNotARepository(err error) bool {
	return errors.Is(err, ErrNotARepository)
}

// IsAutoDetect reports whether dat could not infer the import format.
func IsAutoDetect(err error) bool {
	return errors.Is(err, ErrAutoDetectType)
}

// IsInvalidArgument reports whether err is a local precondition failure.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
