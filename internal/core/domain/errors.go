package domain

import "errors"

var (
	// ErrNotFound is returned for an unknown line reference.
	ErrNotFound = errors.New("not found")

	// ErrOutOfRange is returned when a vertex index falls outside a line.
	ErrOutOfRange = errors.New("index out of range")

	// ErrInvalidOperation is returned when a command is not allowed in the
	// current state, e.g. inserting with nothing staged.
	ErrInvalidOperation = errors.New("invalid operation")
)
