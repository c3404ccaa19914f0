package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Configuration errors: missing/malformed config file, unknown query
	// name, missing required value, parameter count mismatch.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"

	// Query errors: zero rows, more than one row or column, execution
	// failure.
	ErrCodeQuery ErrorCode = "QUERY_ERROR"

	// Network errors: transport-level failure reaching the API. A non-2xx
	// HTTP response is not a network error.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Process exit codes, one per outcome category. ExitAPIFailure is used for
// non-2xx responses, which are recorded outcomes rather than errors.
const (
	ExitOK         = 0
	ExitInternal   = 1
	ExitConfig     = 2
	ExitQuery      = 3
	ExitNetwork    = 4
	ExitAPIFailure = 5
)

// AppError represents an application error with code and context
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ConfigError creates a configuration error
func ConfigError(message string, err error) *AppError {
	return NewAppError(ErrCodeConfig, message, err)
}

// QueryError creates a query error
func QueryError(message string, err error) *AppError {
	return NewAppError(ErrCodeQuery, message, err)
}

// NetworkError creates a network error
func NetworkError(message string, err error) *AppError {
	return NewAppError(ErrCodeNetwork, message, err)
}

// CodeOf returns the error code of err, or ErrCodeInternal when err carries
// no AppError in its chain.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// ExitCode maps an error to the process exit code for its category.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch CodeOf(err) {
	case ErrCodeConfig:
		return ExitConfig
	case ErrCodeQuery:
		return ExitQuery
	case ErrCodeNetwork:
		return ExitNetwork
	default:
		return ExitInternal
	}
}

// IsConfigError checks if the error is a configuration error
func IsConfigError(err error) bool {
	return CodeOf(err) == ErrCodeConfig
}

// IsQueryError checks if the error is a query error
func IsQueryError(err error) bool {
	return CodeOf(err) == ErrCodeQuery
}

// IsNetworkError checks if the error is a network error
func IsNetworkError(err error) bool {
	return CodeOf(err) == ErrCodeNetwork
}
