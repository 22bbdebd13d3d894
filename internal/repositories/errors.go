package repositories

import "errors"

var (
	// ErrNotFound is returned when a lookup resolves to no document
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate is returned when an insert would violate a uniqueness rule
	ErrDuplicate = errors.New("document already exists")

	// ErrNotModified is returned when an update wrote nothing
	ErrNotModified = errors.New("no changes were made")
)
