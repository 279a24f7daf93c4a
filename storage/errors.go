package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a strategy or version is not found.
	ErrNotFound = errors.New("strategy not found")

	// ErrInvalidTransition is returned when a lifecycle change is not
	// allowed from the stored state.
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)
