package service

import "errors"

// Backend-independent errors. Implementations wrap their transport errors with these.
var (
	// ErrInvalidCredentials is returned when login or registration is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired is returned when no usable token pair is left.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotFound is returned for a resource the backend does not know.
	ErrNotFound = errors.New("not found")
)
