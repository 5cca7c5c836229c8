// Package apperr defines the error type shared by every cats package
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so that it survives a trip across the daemon API.
type Kind uint8

const (
	Internal Kind = iota
	Validation
	InvalidTransition
	NotFound
	Persistence
)

var kindNames = map[Kind]string{
	Internal:          "internal",
	Validation:        "validation",
	InvalidTransition: "invalid_transition",
	NotFound:          "not_found",
	Persistence:       "persistence",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return kindNames[Internal]
}

// ParseKind is the inverse of Kind.String. Unknown names map to Internal.
func ParseKind(s string) Kind {
	for k, v := range kindNames {
		if v == s {
			return k
		}
	}

	return Internal
}

// Error is an application error. Package level values act as sentinels:
// errors derived through Fmt or Wrap still match them with errors.Is.
type Error struct {
	Message string
	Kind    Kind
	base    *Error
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t == e || t == e.root()
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// Fmt formats the message with the given arguments.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(e.Message, args...),
		Kind:    e.Kind,
		base:    e.root(),
		cause:   e.cause,
	}
}

// Wrap attaches an underlying cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		Message: e.Message,
		Kind:    e.Kind,
		base:    e.root(),
		cause:   err,
	}
}

// New builds a free-standing error of the given kind. It is used to
// reconstruct errors received from the daemon.
func New(kind Kind, msg string) *Error {
	return &Error{Message: msg, Kind: kind}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}

	return KindOf(err) == kind
}
