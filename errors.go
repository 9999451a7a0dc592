package keyfold

import "errors"

var (
	// ErrNotFound is returned when an object key does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized is returned when the shared secret check fails
	ErrUnauthorized = errors.New("unauthorized")
)
