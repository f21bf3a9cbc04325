package domain

import "errors"

// Sentinel errors for the application.
var (
	// ErrRoomNotFound is returned by read-only room lookups when no room
	// exists for the pair. Not retryable.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomUnavailable wraps store failures during room resolution or
	// creation. Transient; the caller may retry the whole operation.
	ErrRoomUnavailable = errors.New("room store unavailable")

	// ErrUserNotFound is returned when a presence mutation targets an
	// unregistered nickname.
	ErrUserNotFound = errors.New("user not found")

	ErrConflict     = errors.New("resource already exists")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized access")
)
