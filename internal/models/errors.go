package models

import (
	"errors"
	"fmt"
)

// Application-wide standard errors
var (
	// Common resource errors
	ErrNotFound      = errors.New("resource not found")
	ErrTopicNotFound = fmt.Errorf("topic %w", ErrNotFound)
	ErrPostNotFound  = fmt.Errorf("post %w", ErrNotFound)
	ErrUserNotFound  = fmt.Errorf("user %w", ErrNotFound)

	ErrAlreadyExists     = errors.New("resource already exists")
	ErrUserAlreadyExists = fmt.Errorf("user with this username: %w", ErrAlreadyExists)

	// Authentication & authorization
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden    = errors.New("forbidden")    // Authenticated, but lacks permission for the action

	// Token errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenNotFound  = errors.New("token not found in storage")

	// Request errors
	ErrInvalidInput = errors.New("invalid input data")
	// ErrKeyImmutable is returned by repositories when an update payload names a
	// column outside the mutable allow-list of the table.
	ErrKeyImmutable = errors.New("column is not mutable")

	ErrInternalServer = errors.New("internal server error")
)

// InvalidInputf wraps ErrInvalidInput with a formatted detail message.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
