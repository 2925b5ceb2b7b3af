package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrTypeNetwork represents network-related errors
	ErrTypeNetwork ErrorType = "network"
	// ErrTypeNotFound represents resource not found errors
	ErrTypeNotFound ErrorType = "not_found"
	// ErrTypeFormat represents unsupported audio format errors
	ErrTypeFormat ErrorType = "format"
	// ErrTypeEngine represents playback engine errors
	ErrTypeEngine ErrorType = "engine"
	// ErrTypeTransfer represents download transfer errors
	ErrTypeTransfer ErrorType = "transfer"
	// ErrTypeFileSystem represents file system errors
	ErrTypeFileSystem ErrorType = "filesystem"
	// ErrTypeValidation represents validation errors
	ErrTypeValidation ErrorType = "validation"
	// ErrTypeUnknown represents unknown errors
	ErrTypeUnknown ErrorType = "unknown"
)

// AppError represents an application error with context
type AppError struct {
	Type      ErrorType
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Type:      ErrTypeNetwork,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewNoRecordingFound indicates no recording could be resolved for a show
func NewNoRecordingFound(showID string) *AppError {
	return &AppError{
		Type:      ErrTypeNotFound,
		Message:   fmt.Sprintf("no recording found for show %s", showID),
		Retryable: false,
	}
}

// NewNoTracksFound indicates the catalog returned an empty track list
func NewNoTracksFound(recordingID string) *AppError {
	return &AppError{
		Type:      ErrTypeNotFound,
		Message:   fmt.Sprintf("no tracks found for recording %s", recordingID),
		Retryable: false,
	}
}

// NewNoSupportedFormat indicates none of the available formats match the
// preferred format list
func NewNoSupportedFormat(available []string) *AppError {
	return &AppError{
		Type:      ErrTypeFormat,
		Message:   fmt.Sprintf("no supported format among [%s]", strings.Join(available, ", ")),
		Retryable: false,
	}
}

// NewEngineError creates an error for an unrecoverable playback pipeline
// condition
func NewEngineError(message string, cause error) *AppError {
	return &AppError{
		Type:      ErrTypeEngine,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// NewTransferFailed creates an error for a failed download transfer
func NewTransferFailed(message string, cause error) *AppError {
	return &AppError{
		Type:      ErrTypeTransfer,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewFileSystemError creates a new file system error
func NewFileSystemError(message string, cause error) *AppError {
	return &AppError{
		Type:      ErrTypeFileSystem,
		Message:   message,
		Retryable: true,
		Cause:     cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:      ErrTypeValidation,
		Message:   message,
		Retryable: false,
	}
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Retryable
	}
	return false
}

// GetErrorType returns the error type from an error
func GetErrorType(err error) ErrorType {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type
	}
	return ErrTypeUnknown
}

// IsNotFound checks if an error is a not-found error
func IsNotFound(err error) bool {
	return GetErrorType(err) == ErrTypeNotFound
}

// IsFormatError checks if an error is an unsupported format error
func IsFormatError(err error) bool {
	return GetErrorType(err) == ErrTypeFormat
}

// IsNetworkError checks if an error is a network error
func IsNetworkError(err error) bool {
	return GetErrorType(err) == ErrTypeNetwork
}
