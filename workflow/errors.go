package workflow

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/linesmerrill/police-case-api/databases"
)

// Kind classifies a workflow error. Its value is the code in the error envelope.
type Kind string

// Error kinds
const (
	KindValidation   Kind = "validation_error"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindPrecondition Kind = "precondition_failed"
	KindInvalidState Kind = "invalid_state"
	KindServer       Kind = "server_error"
)

// StatusCode is the HTTP status for the kind
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation, KindPrecondition:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInvalidState:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Error is returned by every transition that refuses to run
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetail attaches a detail to the error envelope
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

// Errorf builds an Error of the given kind
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ServerError hides cause behind the generic message
func ServerError(cause error) *Error {
	return &Error{Kind: KindServer, Message: "Internal server error", cause: cause}
}

// AsError returns err as a workflow error. Anything that is not one already
// becomes a server error.
func AsError(err error) *Error {
	var werr *Error
	if errors.As(err, &werr) {
		return werr
	}
	return ServerError(err)
}

// KindOf returns the kind of err, or "" for nil
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return AsError(err).Kind
}

func validationError(format string, args ...interface{}) *Error {
	return Errorf(KindValidation, format, args...)
}

func forbidden() *Error {
	return Errorf(KindForbidden, "You do not have permission to perform this action.")
}

func notFound(what string) *Error {
	return Errorf(KindNotFound, "%s not found.", what)
}

func conflict(format string, args ...interface{}) *Error {
	return Errorf(KindConflict, format, args...)
}

func precondition(format string, args ...interface{}) *Error {
	return Errorf(KindPrecondition, format, args...)
}

func invalidState(format string, args ...interface{}) *Error {
	return Errorf(KindInvalidState, format, args...)
}

// fromStore translates the store sentinels for the record named what
func fromStore(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, databases.ErrNotFound):
		return notFound(what)
	case errors.Is(err, databases.ErrConflict):
		return conflict("%s was changed by another request, retry.", what)
	case errors.Is(err, databases.ErrDuplicate):
		return conflict("%s already exists.", what)
	}
	var werr *Error
	if errors.As(err, &werr) {
		return werr
	}
	return ServerError(err)
}

var errCodeExhausted = errors.New("could not mint an unused reward code")
