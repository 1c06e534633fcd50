package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device name does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when two devices share a name.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidName is returned when a device name is empty, too long,
	// or cannot be embedded in an MQTT topic.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidKind is returned when a device kind is not recognised.
	ErrInvalidKind = errors.New("device: invalid kind")

	// ErrInvalidGesture is returned when a gesture name is not recognised.
	ErrInvalidGesture = errors.New("device: invalid gesture")

	// ErrTopicConflict is returned when two channels expand to the same topic.
	ErrTopicConflict = errors.New("device: topic conflict")
)
