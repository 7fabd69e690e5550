package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Ticket validation
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooShort       = errors.New("title must be at least 3 characters")
	ErrTitleTooLong        = errors.New("title exceeds maximum length of 255 characters")
	ErrDescriptionTooShort = errors.New("description must be at least 5 characters")
	ErrDescriptionTooLong  = errors.New("description exceeds maximum length")
	ErrInvalidPriority     = errors.New("invalid ticket priority")
	ErrInvalidStatus       = errors.New("invalid ticket status")

	// Comment validation
	ErrCommentBodyRequired = errors.New("comment cannot be empty")
	ErrCommentBodyTooLong  = errors.New("comment body exceeds maximum length")

	// Storage
	ErrPersistenceUnavailable = errors.New("ticket storage unavailable")

	// Transport
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewRateLimitError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		Message:    "Too many requests. Please try again later.",
		Code:       "RATE_LIMITED",
		StatusCode: 429,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}

// IsValidation reports whether err is a caller input problem rather than a
// system failure.
func IsValidation(err error) bool {
	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		return true
	}
	switch {
	case errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrTitleTooShort),
		errors.Is(err, ErrTitleTooLong),
		errors.Is(err, ErrDescriptionTooShort),
		errors.Is(err, ErrDescriptionTooLong),
		errors.Is(err, ErrInvalidPriority),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrCommentBodyRequired),
		errors.Is(err, ErrCommentBodyTooLong):
		return true
	}
	return false
}
