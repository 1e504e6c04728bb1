package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an AppError into the closed failure taxonomy
type ErrorKind string

const (
	ErrKindValidation    ErrorKind = "validation"
	ErrKindAuthorization ErrorKind = "authorization"
	ErrKindNotFound      ErrorKind = "not_found"
	ErrKindInvalidState  ErrorKind = "invalid_state"
	ErrKindRetryable     ErrorKind = "retryable"
	ErrKindConfiguration ErrorKind = "configuration"
	ErrKindUnknown       ErrorKind = "unknown"
)

// AppError is a classified failure. Business-rule violations carry a message
// for the caller; transient upstream failures are marked retryable so the
// HTTP layer answers with a server error and the webhook sender redelivers.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to the response status contract
func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case ErrKindValidation, ErrKindInvalidState:
		return http.StatusBadRequest
	case ErrKindAuthorization:
		return http.StatusUnauthorized
	case ErrKindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: ErrKindValidation, Message: message}
}

func NewAuthorizationError(message string) *AppError {
	return &AppError{Kind: ErrKindAuthorization, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Kind: ErrKindNotFound, Message: message}
}

func NewInvalidStateError(message string) *AppError {
	return &AppError{Kind: ErrKindInvalidState, Message: message}
}

func NewRetryableError(message string, err error) *AppError {
	return &AppError{Kind: ErrKindRetryable, Message: message, Err: err}
}

func NewConfigurationError(message string) *AppError {
	return &AppError{Kind: ErrKindConfiguration, Message: message}
}

func NewUnknownError(message string, err error) *AppError {
	return &AppError{Kind: ErrKindUnknown, Message: message, Err: err}
}

// KindOf extracts the kind of a classified error, ErrKindUnknown otherwise
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrKindUnknown
}
