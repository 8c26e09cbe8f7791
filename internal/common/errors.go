package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an application error for edge mapping.
type ErrorKind string

const (
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindBadRequest   ErrorKind = "BAD_REQUEST"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindInternal     ErrorKind = "INTERNAL"
	KindTransient    ErrorKind = "TRANSIENT_STORAGE"
)

// Error is the application error type carried across service boundaries.
// Handlers map it to an HTTP status at the edge; nothing below the edge
// swallows it.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus returns the status code the edge should respond with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// TransientStorage wraps a connection/transaction failure. It is propagated
// unmodified; retry policy belongs to the caller, not the storage boundary.
func TransientStorage(cause error) *Error {
	return &Error{Kind: KindTransient, Message: "storage unavailable", cause: cause}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
