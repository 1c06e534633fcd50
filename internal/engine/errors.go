package engine

import "errors"

// Domain errors for the engine package.
var (
	// ErrInstanceNotFound is returned when no live instance has the given id.
	ErrInstanceNotFound = errors.New("engine: instance not found")

	// ErrOutcomeNotFound is returned when the archive has no run with the given instance id.
	ErrOutcomeNotFound = errors.New("engine: outcome not found")

	// ErrClosed is returned by operations invoked after Close.
	ErrClosed = errors.New("engine: closed")
)
