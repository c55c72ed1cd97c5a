package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the acting user is not the owner of the
	// record being mutated.
	ErrUnauthorized = errors.New("not authorized")
	// ErrEmailTaken is returned when registering with an email that already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on any login failure. Handlers surface
	// it as a generic message so callers cannot probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidResetToken is returned for unknown or expired password reset tokens.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// ErrValidation marks invalid input. errors.Is(err, ErrValidation) holds for
// every error produced by validationErrorf.
var ErrValidation = errors.New("invalid input")

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

func validationErrorf(format string, args ...interface{}) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}
