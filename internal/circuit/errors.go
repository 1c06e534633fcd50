package circuit

import "errors"

// Domain errors for the circuit package.
var (
	// ErrNotImplemented is returned for the competition ordering mode.
	// Definitions using it are rejected at load time.
	ErrNotImplemented = errors.New("circuit: ordering mode not implemented")

	// ErrInvalidDefinition is returned when a definition fails validation.
	ErrInvalidDefinition = errors.New("circuit: invalid definition")

	// ErrUnknownDevice is returned when a step or control device is not in the device registry.
	ErrUnknownDevice = errors.New("circuit: unknown device")

	// ErrDuplicateCircuit is returned when two definitions share an id.
	ErrDuplicateCircuit = errors.New("circuit: duplicate id")

	// ErrCircuitNotFound is returned when a definition id does not exist.
	ErrCircuitNotFound = errors.New("circuit: not found")

	// ErrInvalidState is returned when a manual operation is not allowed in
	// the instance's current state. The instance is left unchanged.
	ErrInvalidState = errors.New("circuit: operation not allowed in current state")
)
