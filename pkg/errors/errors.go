package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	// Build plan errors
	ErrPlanFormat ErrorCode = "PLAN_FORMAT"
	ErrPlanParse  ErrorCode = "PLAN_PARSE"

	// Placeholder errors
	ErrPlaceholderLeak ErrorCode = "PLACEHOLDER_LEAK"

	// Dependency graph errors
	ErrGraphCycle      ErrorCode = "GRAPH_CYCLE"
	ErrGraphMissingDep ErrorCode = "GRAPH_MISSING_DEP"

	// Execution errors
	ErrCompilerProbe ErrorCode = "COMPILER_PROBE"
	ErrProcessStart  ErrorCode = "PROCESS_START"
	ErrProcessExit   ErrorCode = "PROCESS_EXIT"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileRead      ErrorCode = "FILE_READ"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
)

// ReplayError represents a structured error with code and details
type ReplayError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ReplayError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ReplayError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ReplayError) Is(target error) bool {
	var targetErr *ReplayError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ReplayError with the given code and message
func New(code ErrorCode, message string) *ReplayError {
	return &ReplayError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ReplayError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ReplayError {
	return &ReplayError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a ReplayError
func Wrap(err error, code ErrorCode, message string) *ReplayError {
	if err == nil {
		return nil
	}
	return &ReplayError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ReplayError {
	if err == nil {
		return nil
	}
	return &ReplayError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ReplayError) WithDetail(key string, value interface{}) *ReplayError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithExitStatus records the exit status of a failed child process so
// ExitStatus can mirror it as the process exit code.
func (e *ReplayError) WithExitStatus(status int) *ReplayError {
	return e.WithDetail("exitStatus", status)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var replayErr *ReplayError
	if errors.As(err, &replayErr) {
		return replayErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a ReplayError
func GetErrorCode(err error) ErrorCode {
	var replayErr *ReplayError
	if errors.As(err, &replayErr) {
		return replayErr.Code
	}
	return ErrUnknown
}

// ExitStatus maps an error to the process exit code. A PROCESS_EXIT error
// mirrors the failing child's status; every other error is an internal
// failure reported as 1. A nil error is 0.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var replayErr *ReplayError
	if errors.As(err, &replayErr) && replayErr.Code == ErrProcessExit {
		if status, ok := replayErr.Details["exitStatus"].(int); ok && status != 0 {
			return status
		}
	}
	return 1
}
