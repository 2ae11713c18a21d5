// Package apperror defines the errors that are rendered to API clients
// and the classification of store errors into them.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Kind is the closed set of error shapes the application knows about
type Kind int

const (
	KindUnknown Kind = iota
	KindApplication
	KindCast
	KindDuplicateKey
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindApplication:
		return "application"
	case KindCast:
		return "cast"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is an error that carries an HTTP status and a client-safe message.
// Operational errors are expected failures whose message may be shown to
// clients in production.
type Error struct {
	Kind        Kind
	Message     string
	StatusCode  int
	Operational bool

	cause error
}

// New creates an operational error with the given message and status code
func New(message string, statusCode int) *Error {
	return &Error{
		Kind:        KindApplication,
		Message:     message,
		StatusCode:  statusCode,
		Operational: true,
		cause:       pkgerrors.New(message),
	}
}

// NotFound is a shorthand for New(message, 404)
func NotFound(message string) *Error {
	return New(message, http.StatusNotFound)
}

// Wrap turns an arbitrary error into a non-operational 500
func Wrap(err error) *Error {
	return &Error{
		Kind:       KindUnknown,
		Message:    err.Error(),
		StatusCode: http.StatusInternalServerError,
		cause:      withStack(err),
	}
}

func newOperational(kind Kind, message string, statusCode int, cause error) *Error {
	return &Error{
		Kind:        kind,
		Message:     message,
		StatusCode:  statusCode,
		Operational: true,
		cause:       withStack(cause),
	}
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status is "fail" for client errors and "error" for everything else
func (e *Error) Status() string {
	return StatusClass(e.StatusCode)
}

// Stack renders the deepest recorded stack trace in the cause chain
func (e *Error) Stack() string {
	var st stackTracer
	for c := e.cause; c != nil; c = errors.Unwrap(c) {
		if s, ok := c.(stackTracer); ok {
			st = s
		}
	}
	if st == nil {
		return e.Message
	}
	return fmt.Sprintf("%s%+v", e.Message, st.StackTrace())
}

// StatusClass maps an HTTP status code to the envelope status string
func StatusClass(statusCode int) string {
	if statusCode >= 400 && statusCode <= 499 {
		return "fail"
	}
	return "error"
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

func withStack(err error) error {
	var st stackTracer
	if errors.As(err, &st) {
		return err
	}
	return pkgerrors.WithStack(err)
}
