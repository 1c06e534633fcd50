package engine

import (
	"time"

	"github.com/limbx/limbx-core/internal/device"
)

// Devices is the part of the device registry the engine needs.
type Devices interface {
	// Get returns a station by name.
	Get(name string) (device.Device, error)

	// Resolve maps a gesture topic to its station and gesture.
	Resolve(topic string) (name string, gesture device.Gesture, ok bool)

	// LightTopic returns the light command topic of a station.
	LightTopic(name string) (string, bool)
}

// MQTTClient publishes light commands.
type MQTTClient interface {
	// PublishAsync enqueues a message without waiting for the broker.
	PublishAsync(topic string, payload []byte, qos byte, retained bool) error
}

// Notifier receives engine events. The WebSocket hub implements it.
type Notifier interface {
	// Broadcast sends an event to everyone subscribed to channel.
	Broadcast(channel string, payload any)
}

// Notifiers fans one event out to several notifiers.
type Notifiers []Notifier

// Broadcast implements Notifier.
func (ns Notifiers) Broadcast(channel string, payload any) {
	for _, n := range ns {
		if n != nil {
			n.Broadcast(channel, payload)
		}
	}
}

// Telemetry records run outcomes and gesture counts. The InfluxDB client
// implements it.
type Telemetry interface {
	WriteCircuitOutcome(circuitID, instanceID, outcome string, duration time.Duration, steps int, players []string, at time.Time)
	WriteGesture(device, gesture string, admitted bool)
}

// Logger defines the logging interface used by the engine.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
