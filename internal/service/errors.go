// Package service provides business logic for the application.
package service

import (
	"errors"
)

// Kind classifies a service failure for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindBadRequest
)

// String returns the machine-readable code for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindBadRequest:
		return "BAD_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is a classified service failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Service errors.
var (
	ErrUserNotFound       = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrArticleNotFound    = &Error{Kind: KindNotFound, Message: "article not found"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Message: "user with this email already exists"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "invalid email or password"}
)

// KindOf returns the kind of the first *Error in err's chain,
// or KindInternal if there is none.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// badRequest wraps cause with a client-facing message.
func badRequest(message string, cause error) error {
	return &Error{Kind: KindBadRequest, Message: message, Err: cause}
}
