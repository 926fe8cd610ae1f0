package game

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map these to status codes with errors.Is.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrBusy       = errors.New("player is busy")
)

// Error carries a kind and a user-facing cause. Its message is the cause
// alone.
type Error struct {
	Kind error
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func badRequest(format string, args ...any) error {
	return newError(ErrBadRequest, format, args...)
}

func notFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

// wrapKind tags an existing error with a kind.
func wrapKind(kind, err error) error {
	return &Error{Kind: kind, Err: err}
}
