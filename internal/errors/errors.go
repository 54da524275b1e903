package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of pipeline errors
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeRecordFetch      ErrorType = "record_fetch_failed"
	ErrorTypeImageUnavailable ErrorType = "image_unavailable"
	ErrorTypeTranscode        ErrorType = "transcode_failed"
	ErrorTypeAssembly         ErrorType = "document_assembly_failed"
	ErrorTypeExportRunning    ErrorType = "export_already_running"
	ErrorTypeTimeout          ErrorType = "timeout"
	ErrorTypeInternal         ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewRecordFetchError marks a failed history retrieval. Retryable by the
// caller; never fatal to the process.
func NewRecordFetchError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeRecordFetch,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewImageUnavailableError marks an image whose primary and fallback loads
// both failed, or that had no reference at all. Exports absorb this and
// degrade; it never fails a job.
func NewImageUnavailableError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeImageUnavailable,
		Message:    message,
		StatusCode: http.StatusNotFound,
		Cause:      cause,
	}
}

// NewTranscodeError marks a decoded bitmap that could not be drawn or
// re-encoded. Recovered the same way as an unavailable image.
func NewTranscodeError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTranscode,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewAssemblyError marks a failure in document composition itself. This is
// the one condition that fails an export job.
func NewAssemblyError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeAssembly,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewExportRunningError marks a duplicate export request for a lane that
// already has a running job.
func NewExportRunningError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeExportRunning,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error (or anything it wraps) is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
