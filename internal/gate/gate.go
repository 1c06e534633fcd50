package gate

import (
	"fmt"
	"sync"
	"time"

	"github.com/limbx/limbx-core/internal/device"
)

// Policy names accepted by New.
const (
	PolicyGlobal    = "global"
	PolicyPerDevice = "per_device"
)

// Gate decides whether an inbound gesture is fresh or a sensor bounce.
type Gate interface {
	// Admit reports whether the gesture should be processed, and records
	// it as the latest accepted one when it is.
	Admit(deviceName string, gesture device.Gesture, now time.Time) bool
}

// New returns the gate for a configured policy name.
func New(policy string, window time.Duration) (Gate, error) {
	switch policy {
	case PolicyGlobal, "":
		return NewGlobal(window), nil
	case PolicyPerDevice:
		return NewPerDevice(window), nil
	default:
		return nil, fmt.Errorf("gate: unknown debounce policy %q", policy)
	}
}

// Global suppresses a gesture kind for the window after the last accepted
// gesture of the same kind on any device.
//
// Two players tapping different stations within the window lose one tap.
// PerDevice avoids that at the cost of letting cross-device echoes through.
type Global struct {
	window time.Duration
	last   map[device.Gesture]time.Time
	mu     sync.Mutex
}

// NewGlobal creates a Global gate.
func NewGlobal(window time.Duration) *Global {
	return &Global{
		window: window,
		last:   make(map[device.Gesture]time.Time),
	}
}

// Admit implements Gate. The device name is ignored.
func (g *Global) Admit(_ string, gesture device.Gesture, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.last[gesture]; ok && now.Sub(last) < g.window {
		return false
	}
	g.last[gesture] = now
	return true
}

type deviceGesture struct {
	device  string
	gesture device.Gesture
}

// PerDevice suppresses a gesture only when the same device reported the
// same gesture within the window.
type PerDevice struct {
	window time.Duration
	last   map[deviceGesture]time.Time
	mu     sync.Mutex
}

// NewPerDevice creates a PerDevice gate.
func NewPerDevice(window time.Duration) *PerDevice {
	return &PerDevice{
		window: window,
		last:   make(map[deviceGesture]time.Time),
	}
}

// Admit implements Gate.
func (g *PerDevice) Admit(deviceName string, gesture device.Gesture, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := deviceGesture{device: deviceName, gesture: gesture}
	if last, ok := g.last[key]; ok && now.Sub(last) < g.window {
		return false
	}
	g.last[key] = now
	return true
}
