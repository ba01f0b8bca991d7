package store

import "errors"

// Common errors
var (
	// ErrAddFailed is returned when persisting a record fails
	ErrAddFailed = errors.New("failed to add record")

	// ErrQueryFailed is returned when reading from the collection fails
	ErrQueryFailed = errors.New("failed to query records")
)
