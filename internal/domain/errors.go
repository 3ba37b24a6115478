package domain

import "errors"

var (
	// ErrValidation marks malformed or out-of-bounds caller input.
	ErrValidation = errors.New("validation error")

	// ErrShuttingDown marks work refused because the server is draining.
	ErrShuttingDown = errors.New("server is shutting down")
)
