package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// ConfigurationErrorMessage describes missing or invalid credentials.
	ConfigurationErrorMessage = "configuration error"
	// MalformedRequestMessage describes an unreadable inbound envelope.
	MalformedRequestMessage = "malformed request"
	// UnsupportedMediaTypeMessage describes a non-JSON inbound body.
	UnsupportedMediaTypeMessage = "unsupported media type"
	// ChannelAuthErrorMessage describes a rejected channel credential.
	ChannelAuthErrorMessage = "channel authentication failed"
	// CompletionErrorMessage describes completion API failures.
	CompletionErrorMessage = "completion api request failed"
)

// Kind classifies an AppError for the handler and HTTP boundaries.
type Kind string

const (
	KindConfiguration    Kind = "configuration"
	KindMalformedRequest Kind = "malformed_request"
	KindChannelAuth      Kind = "channel_auth"
	KindCompletion       Kind = "completion_api"
	KindUnhandled        Kind = "unhandled"
)

// AppError wraps an underlying error with an HTTP status, a kind and a safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
	Kind    Kind
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new unclassified AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
		Kind:    KindUnhandled,
	}
}

// Configuration reports missing or invalid configuration for a lazily built component.
func Configuration(format string, args ...any) *AppError {
	return &AppError{
		Err:     fmt.Errorf(format, args...),
		Status:  http.StatusInternalServerError,
		Message: ConfigurationErrorMessage,
		Kind:    KindConfiguration,
	}
}

// MalformedRequest wraps an envelope decoding failure (HTTP 400).
func MalformedRequest(err error) *AppError {
	return &AppError{
		Err:     err,
		Status:  http.StatusBadRequest,
		Message: MalformedRequestMessage,
		Kind:    KindMalformedRequest,
	}
}

// UnsupportedMediaType rejects a request whose body is not JSON (HTTP 415).
func UnsupportedMediaType(contentType string) *AppError {
	return &AppError{
		Err:     fmt.Errorf("content type %q", contentType),
		Status:  http.StatusUnsupportedMediaType,
		Message: UnsupportedMediaTypeMessage,
		Kind:    KindMalformedRequest,
	}
}

// ChannelAuth wraps an inbound token verification failure (HTTP 401).
func ChannelAuth(err error) *AppError {
	return &AppError{
		Err:     err,
		Status:  http.StatusUnauthorized,
		Message: ChannelAuthErrorMessage,
		Kind:    KindChannelAuth,
	}
}

// KindOf returns the classification of err, KindUnhandled when none is attached.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != "" {
		return appErr.Kind
	}
	return KindUnhandled
}

// StatusOf returns the HTTP status attached to err, 500 when none is attached.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Is reports whether the target matches the underlying error.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}
