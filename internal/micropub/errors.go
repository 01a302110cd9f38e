package micropub

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Match with errors.Is.
var (
	ErrInvalidTarget      = errors.New("invalid target")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInsufficientScope  = errors.New("insufficient scope")
)

// Error is a failure reported by the engine, the query dispatcher or the
// action layer. Error() returns only the human readable message.
type Error struct {
	kind    error
	message string
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// InvalidRequest builds an invalid_request protocol error.
func InvalidRequest(format string, args ...any) *Error {
	return newError(ErrInvalidRequest, format, args...)
}

// InsufficientScope builds an insufficient_scope protocol error.
func InsufficientScope(scope string) *Error {
	return newError(ErrInsufficientScope, "token does not grant the %q scope", scope)
}

func (e *Error) Error() string { return e.message }
func (e *Error) Unwrap() error { return e.kind }

// Code is the Micropub error code sent in the response body.
func (e *Error) Code() string {
	switch e.kind {
	case ErrInvalidTarget:
		return "not_found"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrForbidden:
		return "forbidden"
	case ErrInsufficientScope:
		return "insufficient_scope"
	default:
		return "invalid_request"
	}
}

// Status is the HTTP status matching the error kind.
func (e *Error) Status() int {
	switch e.kind {
	case ErrInvalidTarget:
		return http.StatusNotFound
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden, ErrInsufficientScope:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// ErrorBody is the JSON shape of a Micropub error response.
type ErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// Body returns the response body for e.
func (e *Error) Body() ErrorBody {
	return ErrorBody{Error: e.Code(), ErrorDescription: e.message}
}
