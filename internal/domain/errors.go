package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, client-visible category of a failure.
type ErrorKind string

const (
	KindUnauthorized      ErrorKind = "unauthorized"
	KindNotFound          ErrorKind = "not_found"
	KindInvalidSelfTarget ErrorKind = "invalid_self_target"
	KindAlreadyRelated    ErrorKind = "already_related"
	KindForbidden         ErrorKind = "forbidden"
	KindInvalidState      ErrorKind = "invalid_state"
	KindAlreadyExists     ErrorKind = "already_exists"
	KindInvalidInput      ErrorKind = "invalid_input"
	KindPersistence       ErrorKind = "persistence_failure"
)

// Error is a failure with a kind and a message suitable for direct display.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidSelfTarget = &Error{Kind: KindInvalidSelfTarget}
	ErrAlreadyRelated    = &Error{Kind: KindAlreadyRelated}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrInvalidState      = &Error{Kind: KindInvalidState}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrPersistence       = &Error{Kind: KindPersistence}
)

// NewError creates an error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Persistence wraps a store failure. The cause is kept for logs only.
func Persistence(err error, format string, args ...any) *Error {
	return &Error{Kind: KindPersistence, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the kind of err, or KindPersistence for unknown errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}

// MessageOf returns the display message of err without internal causes.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return "Internal server error"
}
