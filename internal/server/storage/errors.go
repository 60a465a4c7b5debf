package storage

import "errors"

// Common storage errors
var (
	// ErrNotFound indicates that the requested record is absent
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a uniqueness collision on insert or update
	ErrDuplicate = errors.New("duplicate record")
)
