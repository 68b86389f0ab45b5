// Package apierr defines the typed error kinds the translation service can
// raise and maps each to its HTTP status code. Adapted from the provider SDK's
// ProviderError/ValidationError pattern, collapsed to the seven kinds this
// service actually distinguishes.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the seven error kinds the service distinguishes.
type Kind string

const (
	InvalidInput     Kind = "INVALID_INPUT"
	Unauthorized     Kind = "UNAUTHORIZED"
	ModelNotFound    Kind = "MODEL_NOT_FOUND"
	ModelUnavailable Kind = "MODEL_UNAVAILABLE"
	DecodeEmpty      Kind = "DECODE_EMPTY"
	Timeout          Kind = "TIMEOUT"
	Internal         Kind = "INTERNAL"
)

// HTTPStatus returns the HTTP status code this kind maps to, per the error
// handling design: validation errors are 422, auth is 401, unavailability is
// 503, decode failures are 500, timeouts are 504, and anything unclassified
// is 500.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidInput:
		return http.StatusUnprocessableEntity
	case Unauthorized:
		return http.StatusUnauthorized
	case ModelNotFound:
		return http.StatusNotFound
	case ModelUnavailable:
		return http.StatusServiceUnavailable
	case DecodeEmpty:
		return http.StatusInternalServerError
	case Timeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed service error. Message is safe to surface to a client for
// InvalidInput; for every other kind callers should log Error() (which
// includes Cause) and return a generic message, since no error may contain
// user tokens or model paths in its client-facing form.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error of the given kind with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// As extracts an *Error from err, following the Unwrap chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or Internal if err is not a *Error (or is nil,
// in which case it still returns Internal — callers must check err != nil first).
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
