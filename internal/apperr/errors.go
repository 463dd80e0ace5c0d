// Package apperr holds the error taxonomy shared by the domain packages.
// Packages wrap these sentinels with context; the HTTP layer maps them to
// status codes with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnauthorized      = errors.New("invalid email or password")
)

// Error is a client-facing error: Msg is safe to show, Kind is one of the
// sentinels above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func New(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Message returns the text to show a client for err: the innermost Error's
// Msg when there is one, otherwise err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return err.Error()
}
