package device

import (
	"fmt"
	"sort"

	"github.com/limbx/limbx-core/internal/infrastructure/config"
	"github.com/limbx/limbx-core/internal/infrastructure/mqtt"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
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

// route is the reverse mapping of one gesture topic.
type route struct {
	device  string
	gesture Gesture
}

// Registry is the static catalogue of stations.
//
// It is built once from configuration and never mutated afterwards, so
// all methods are safe for concurrent use without locking.
type Registry struct {
	devices map[string]*Device
	order   []string // configuration order, for stable listings
	routes  map[string]route
	logger  Logger
}

// NewRegistry builds the registry from the devices section of the config,
// expanding each station's channels from the topic templates.
//
// Parameters:
//   - devices: Station table from config.yaml
//   - topics: Topic templates; "{name}" is replaced with the device name
//
// Returns:
//   - *Registry: Ready-to-use registry
//   - error: If a device is invalid, duplicated, or two channels collide
func NewRegistry(devices []config.DeviceConfig, topics config.TopicsConfig) (*Registry, error) {
	r := &Registry{
		devices: make(map[string]*Device, len(devices)),
		order:   make([]string, 0, len(devices)),
		routes:  make(map[string]route, len(devices)*2),
		logger:  noopLogger{},
	}

	t := mqtt.Topics{}
	for _, dc := range devices {
		d := &Device{
			Name:      dc.Name,
			Kind:      Kind(dc.Type),
			Threshold: dc.Threshold,
		}
		switch d.Kind {
		case KindTag:
			d.TapTopic = t.DeviceTopic(topics.TagTap, d.Name)
			d.DoubleTapTopic = t.DeviceTopic(topics.TagDoubleTap, d.Name)
			d.LightTopic = t.DeviceTopic(topics.TagLight, d.Name)
		case KindTile:
			d.LoadcellTopic = t.DeviceTopic(topics.TileLoadcell, d.Name)
			d.LightTopic = t.DeviceTopic(topics.TileLight, d.Name)
		}

		if err := ValidateDevice(d); err != nil {
			return nil, err
		}
		if _, exists := r.devices[d.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDeviceExists, d.Name)
		}

		for _, g := range AllGestures() {
			topic := d.GestureTopic(g)
			if topic == "" {
				continue
			}
			if prev, taken := r.routes[topic]; taken {
				return nil, fmt.Errorf("%w: %q used by %s and %s", ErrTopicConflict, topic, prev.device, d.Name)
			}
			r.routes[topic] = route{device: d.Name, gesture: g}
		}

		r.devices[d.Name] = d
		r.order = append(r.order, d.Name)
	}

	return r, nil
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Get returns the device with the given name.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) Get(name string) (Device, error) {
	d, ok := r.devices[name]
	if !ok {
		return Device{}, fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
	}
	return *d, nil
}

// Has reports whether a device with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.devices[name]
	return ok
}

// List returns all devices in configuration order.
func (r *Registry) List() []Device {
	out := make([]Device, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.devices[name])
	}
	return out
}

// Count returns the number of registered devices.
func (r *Registry) Count() int {
	return len(r.devices)
}

// Resolve maps a gesture topic back to the device and gesture it carries.
func (r *Registry) Resolve(topic string) (name string, gesture Gesture, ok bool) {
	rt, ok := r.routes[topic]
	if !ok {
		return "", "", false
	}
	return rt.device, rt.gesture, true
}

// LightTopic returns the light command channel of a device. It logs a
// warning and returns false when the device is unknown or has no actuator.
func (r *Registry) LightTopic(name string) (string, bool) {
	d, ok := r.devices[name]
	if !ok {
		r.logger.Warn("light command for unknown device", "device", name)
		return "", false
	}
	if d.LightTopic == "" {
		r.logger.Warn("device has no light command topic", "device", name)
		return "", false
	}
	return d.LightTopic, true
}

// GestureTopics returns every gesture topic in sorted order, for subscribing.
func (r *Registry) GestureTopics() []string {
	out := make([]string, 0, len(r.routes))
	for topic := range r.routes {
		out = append(out, topic)
	}
	sort.Strings(out)
	return out
}

// LoadcellTopics returns the load-cell channels of all tiles in sorted order.
func (r *Registry) LoadcellTopics() []string {
	var out []string
	for _, name := range r.order {
		if topic := r.devices[name].LoadcellTopic; topic != "" {
			out = append(out, topic)
		}
	}
	sort.Strings(out)
	return out
}
