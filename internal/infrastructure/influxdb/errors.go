package influxdb

import "errors"

// Errors returned by the telemetry client. Check with errors.Is.
var (
	// ErrNotConnected is returned after Close or on a client that never connected.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed is returned when the server cannot be reached at startup.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed wraps batch failures delivered to the SetOnError callback.
	ErrWriteFailed = errors.New("influxdb: write failed")

	// ErrDisabled is returned by Connect when influxdb.enabled is false.
	ErrDisabled = errors.New("influxdb: disabled in configuration")
)
