// Package common defines shared constants and sentinel errors used across
// the PageKeeper server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Registration errors.
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")

	// Invitation errors.
	ErrUserNotFound    = errors.New("user does not exist")
	ErrSelfInvite      = errors.New("cannot invite yourself")
	ErrAlreadyMember   = errors.New("user already has access to the page")
	ErrAlreadyInvited  = errors.New("user is already invited to the page")
	ErrNotStaged       = errors.New("user was not added to the invite list")
	ErrMissingEnvelope = errors.New("missing encrypted key")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Startup errors.
	ErrIncorrectConfigKey = errors.New("incorrect encryption key")
)

// ValidationError carries a message meant for the end user. It matches
// ErrorValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrorValidation }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
