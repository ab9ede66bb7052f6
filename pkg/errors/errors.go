package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind represents different categories of errors
type ErrorKind string

const (
	KindFileTooLarge        ErrorKind = "file_too_large"
	KindUnsupportedFormat   ErrorKind = "unsupported_format"
	KindValidation          ErrorKind = "validation"
	KindUploadFailed        ErrorKind = "upload_failed"
	KindConvertFailed       ErrorKind = "convert_failed"
	KindProviderUnavailable ErrorKind = "provider_unavailable"
	KindNetwork             ErrorKind = "network"
)

// AppError represents a structured application error
type AppError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	// Status is the HTTP status of a failed upload/convert exchange,
	// zero for errors that never reached the network.
	Status    int   `json:"status,omitempty"`
	Transient bool  `json:"-"`
	Cause     error `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewFileTooLarge creates the error for a file exceeding the upload limit
func NewFileTooLarge(sizeBytes, limitBytes int64) *AppError {
	return &AppError{
		Kind:    KindFileTooLarge,
		Message: fmt.Sprintf("file is %d bytes, maximum size is %dMB", sizeBytes, limitBytes/(1024*1024)),
	}
}

// NewUnsupportedFormat creates the error for an unconvertible format pair
func NewUnsupportedFormat(message string) *AppError {
	return &AppError{
		Kind:    KindUnsupportedFormat,
		Message: message,
	}
}

// NewValidationError creates a local validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Message: message,
	}
}

// NewUploadFailed classifies a failed upload exchange from its HTTP status
func NewUploadFailed(status int, rawMessage string) *AppError {
	message, transient := classifyStatus(status, rawMessage)
	return &AppError{
		Kind:      KindUploadFailed,
		Message:   message,
		Status:    status,
		Transient: transient,
	}
}

// NewConvertFailed classifies a failed convert exchange from its HTTP status
func NewConvertFailed(status int, rawMessage string) *AppError {
	message, transient := classifyStatus(status, rawMessage)
	return &AppError{
		Kind:      KindConvertFailed,
		Message:   message,
		Status:    status,
		Transient: transient,
	}
}

// NewProviderUnavailable creates the error for identity-provider startup failure
func NewProviderUnavailable(cause error) *AppError {
	return &AppError{
		Kind:    KindProviderUnavailable,
		Message: "identity provider did not become ready",
		Cause:   cause,
	}
}

// NewNetworkError creates the error for a transport-level failure
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Kind:      KindNetwork,
		Message:   message,
		Transient: true,
		Cause:     cause,
	}
}

// classifyStatus maps an HTTP status to a user-facing message and marks
// whether a retry is worthwhile. Unknown statuses pass the raw message
// through untouched.
func classifyStatus(status int, rawMessage string) (string, bool) {
	switch status {
	case http.StatusBadRequest:
		if rawMessage != "" {
			return "the service rejected the request: " + rawMessage, false
		}
		return "the service rejected the request", false
	case http.StatusRequestEntityTooLarge:
		return "the file is too large for the service", false
	case http.StatusUnsupportedMediaType:
		return "the service does not support this file type", false
	case http.StatusTooManyRequests:
		return "too many requests, slow down and try again", true
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return "the service hit a temporary fault, try again", true
	}
	return rawMessage, false
}

// IsKind checks if the error is of a specific kind
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// IsTransient reports whether retrying the same request may succeed
func IsTransient(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Transient
	}
	return false
}

// StatusOf returns the HTTP status carried by the error, zero if none
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}
