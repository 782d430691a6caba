// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation   ErrorType = iota // Input validation errors (400 Bad Request)
	ErrorTypeUnauthorized                  // Signature or credential failures (401 Unauthorized)
	ErrorTypeNotFound                      // Resource not found errors (404 Not Found)
	ErrorTypeConflict                      // Resource conflict errors (409 Conflict)
	ErrorTypeInternal                      // Internal server errors (500 Internal Server Error)
	ErrorTypeUnavailable                   // Service unavailable errors (503 Service Unavailable)
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ErrorTypeInternal // default fallback
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewUnauthorizedError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnauthorized, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}

// Sentinel errors. They carry their category so callers can wrap them with
// fmt.Errorf("...: %w", err) and still be classified by GetErrorType.
var (
	ErrMissingHeaders       = NewValidationError("missing signature or API key")
	ErrInvalidJSON          = NewValidationError("invalid JSON")
	ErrMissingCorrelationID = NewValidationError("missing call correlation identifier")
	ErrInvalidSignature     = NewUnauthorizedError("invalid signature")
	ErrMeetingNotFound      = NewNotFoundError("meeting not found")
	ErrAgentNotFound        = NewNotFoundError("agent not found")
	ErrAmbiguousMeeting     = NewNotFoundError("cannot match event to a single meeting")
	ErrTranscriptNotReady   = NewNotFoundError("transcript not available yet, the meeting may still be processing")
	ErrIllegalTransition    = NewConflictError("meeting status does not allow this transition")
	ErrTranscriptFetch      = NewInternalError("failed to fetch transcript content from external service")
	ErrSummaryGeneration    = NewInternalError("failed to generate summary")
	ErrServiceUnavailable   = NewUnavailableError("service unavailable")
)
