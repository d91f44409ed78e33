// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found by email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned when attempting to create a user with an email that already exists.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrInvalidCredentials is returned for both an unknown email and a wrong password,
	// so callers cannot tell which one happened.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidInput is returned when a required field is empty.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooManyAttempts is returned when the login limiter rejects an attempt.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// FieldError reports a missing or invalid input field. It matches ErrInvalidInput.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}
