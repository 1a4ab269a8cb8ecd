// Package apperr defines the error taxonomy shared by all domain packages.
// Handlers never branch on error strings: they classify through KindOf and
// let the central HTTP error handler pick the status code, so the original
// cause survives into the logs instead of being swallowed at the boundary.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary mapping.
type Kind int

const (
	// Internal is the fallback for unexpected failures (database faults,
	// broken invariants). Details are logged, never shown to the client.
	Internal Kind = iota
	// NotFound means the addressed entity does not exist.
	NotFound
	// Validation means the input was understood but rejected.
	Validation
	// Unauthorized means the caller is not authenticated, or the supplied
	// credentials did not match.
	Unauthorized
	// Forbidden means the caller is authenticated but its role does not
	// permit the operation.
	Forbidden
	// Conflict means a uniqueness or state constraint was violated.
	Conflict
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Validation:
		return "validation"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a kind, a client-safe message and the wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an error of the given kind with a client-safe message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kinded error. The cause is kept for logs only.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return Newf(NotFound, format, args...)
}

func Validationf(format string, args ...interface{}) *Error {
	return Newf(Validation, format, args...)
}

func Unauthorizedf(format string, args ...interface{}) *Error {
	return Newf(Unauthorized, format, args...)
}

func Forbiddenf(format string, args ...interface{}) *Error {
	return Newf(Forbidden, format, args...)
}

func Internalf(format string, args ...interface{}) *Error {
	return Newf(Internal, format, args...)
}

// KindOf extracts the kind from an error chain. Unclassified errors are
// Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the client-safe message of a classified error, or a
// generic message for anything else.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "error interno del servidor"
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
