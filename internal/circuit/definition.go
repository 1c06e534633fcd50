package circuit

import (
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/limbx/limbx-core/internal/device"
	"github.com/limbx/limbx-core/internal/light"
)

// OrderMode selects how a circuit's steps must be played.
type OrderMode string

// Ordering modes.
const (
	OrderStrict   OrderMode = "strict"
	OrderFlexible OrderMode = "flexible"

	// OrderCompetition is recognised so it can be rejected explicitly.
	OrderCompetition OrderMode = "competition"
)

// ColorMode selects whether players may change the circuit color.
type ColorMode string

// Color modes.
const (
	ColorFixed    ColorMode = "fixed"
	ColorVariable ColorMode = "variable"
)

// CompletionEffect is the animation played when a circuit is completed.
type CompletionEffect string

// Completion effects.
const (
	CompletionCelebration CompletionEffect = "celebration"
	CompletionNone        CompletionEffect = "none"
)

// IdleLighting selects how stations look while a circuit waits to start.
type IdleLighting string

// Idle lighting modes.
const (
	// IdleAllActive lights every station of the course at wait brightness.
	IdleAllActive IdleLighting = "all_active"

	// IdleOnlyActive lights only the control station.
	IdleOnlyActive IdleLighting = "only_active"
)

// Definition defaults.
const (
	defaultWaitBrightnessStrict   = 50
	defaultWaitBrightnessFlexible = 60
)

// Step is one expected gesture on one station.
type Step struct {
	Order   int            `yaml:"order" json:"order"`
	Device  string         `yaml:"device" json:"device"`
	Gesture device.Gesture `yaml:"event" json:"event"`

	// Bonus marks an optional station. It is carried for display only.
	Bonus bool `yaml:"bonus,omitempty" json:"bonus,omitempty"`
}

// Definition is the static description of a playable course.
type Definition struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description,omitempty"`

	// ControlDevice starts the circuit. Defaults to the first step's device.
	ControlDevice string `yaml:"control_device" json:"control_device"`

	InitialColor light.Color `yaml:"color_initial" json:"color_initial"`
	ColorMode    ColorMode   `yaml:"color_mode" json:"color_mode"`

	// MaxTime is the time limit in seconds; 0 means unlimited.
	MaxTime int `yaml:"max_time" json:"max_time"`

	CompletionEffect CompletionEffect `yaml:"completion_effect" json:"completion_effect"`
	OrderMode        OrderMode        `yaml:"order_mode" json:"order_mode"`
	IdleLighting     IdleLighting     `yaml:"idle_lighting" json:"idle_lighting"`

	// Brightness percentages (0-100).
	SurpassedLight         int `yaml:"surpassed_light" json:"surpassed_light"`
	WaitBrightnessStrict   int `yaml:"wait_brightness_strict" json:"wait_brightness_strict"`
	WaitBrightnessFlexible int `yaml:"wait_brightness_flexible" json:"wait_brightness_flexible"`

	Steps []Step `yaml:"steps" json:"steps"`
}

// defaultDefinition holds the values used for keys a definition omits.
func defaultDefinition() Definition {
	return Definition{
		InitialColor:           light.Green,
		ColorMode:              ColorVariable,
		CompletionEffect:       CompletionCelebration,
		OrderMode:              OrderStrict,
		IdleLighting:           IdleOnlyActive,
		WaitBrightnessStrict:   defaultWaitBrightnessStrict,
		WaitBrightnessFlexible: defaultWaitBrightnessFlexible,
	}
}

// UnmarshalYAML fills omitted keys with defaults.
func (d *Definition) UnmarshalYAML(value *yaml.Node) error {
	type plain Definition
	p := plain(defaultDefinition())
	p.InitialColor = light.Color{}
	if err := value.Decode(&p); err != nil {
		return err
	}

	// A missing color_initial falls back to green; a partial one keeps
	// zero for the omitted channels.
	var colorField struct {
		InitialColor *light.Color `yaml:"color_initial"`
	}
	if err := value.Decode(&colorField); err != nil {
		return err
	}
	if colorField.InitialColor == nil {
		p.InitialColor = light.Green
	}

	*d = Definition(p)
	return nil
}

// normalize sorts steps by order, keeping declaration order for ties, and
// fills derived defaults.
func (d *Definition) normalize() {
	sort.SliceStable(d.Steps, func(i, j int) bool {
		return d.Steps[i].Order < d.Steps[j].Order
	})
	if d.Name == "" {
		d.Name = d.ID
	}
	if d.ControlDevice == "" && len(d.Steps) > 0 {
		d.ControlDevice = d.Steps[0].Device
	}
}

// Sequence returns the device of every step in play order.
func (d *Definition) Sequence() []string {
	seq := make([]string, len(d.Steps))
	for i, s := range d.Steps {
		seq[i] = s.Device
	}
	return seq
}

// MaxDuration returns the time limit, or 0 when unlimited.
func (d *Definition) MaxDuration() time.Duration {
	return time.Duration(d.MaxTime) * time.Second
}

// DeviceLookup is the part of the device registry definitions and
// instances need.
type DeviceLookup interface {
	Get(name string) (device.Device, error)
}

// Validate checks a normalized definition against the device registry.
//
// Returns:
//   - ErrNotImplemented for the competition ordering mode
//   - ErrUnknownDevice when a referenced device is not registered
//   - ErrInvalidDefinition for any other problem
func (d *Definition) Validate(devices DeviceLookup) error { //nolint:gocyclo // flat list of independent checks
	if d.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDefinition)
	}
	switch d.OrderMode {
	case OrderStrict, OrderFlexible:
	case OrderCompetition:
		return fmt.Errorf("circuit %q: %w: %s", d.ID, ErrNotImplemented, d.OrderMode)
	default:
		return fmt.Errorf("circuit %q: %w: unknown order_mode %q", d.ID, ErrInvalidDefinition, d.OrderMode)
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("circuit %q: %w: at least one step is required", d.ID, ErrInvalidDefinition)
	}
	switch d.ColorMode {
	case ColorFixed, ColorVariable:
	default:
		return fmt.Errorf("circuit %q: %w: unknown color_mode %q", d.ID, ErrInvalidDefinition, d.ColorMode)
	}
	switch d.CompletionEffect {
	case CompletionCelebration, CompletionNone:
	default:
		return fmt.Errorf("circuit %q: %w: unknown completion_effect %q", d.ID, ErrInvalidDefinition, d.CompletionEffect)
	}
	switch d.IdleLighting {
	case IdleAllActive, IdleOnlyActive:
	default:
		return fmt.Errorf("circuit %q: %w: unknown idle_lighting %q", d.ID, ErrInvalidDefinition, d.IdleLighting)
	}
	if d.MaxTime < 0 {
		return fmt.Errorf("circuit %q: %w: max_time must not be negative", d.ID, ErrInvalidDefinition)
	}
	for name, pct := range map[string]int{
		"surpassed_light":          d.SurpassedLight,
		"wait_brightness_strict":   d.WaitBrightnessStrict,
		"wait_brightness_flexible": d.WaitBrightnessFlexible,
	} {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("circuit %q: %w: %s must be between 0 and 100", d.ID, ErrInvalidDefinition, name)
		}
	}

	inSequence := false
	for i, s := range d.Steps {
		if _, err := device.ParseGesture(string(s.Gesture)); err != nil {
			return fmt.Errorf("circuit %q step %d: %w: %w", d.ID, i+1, ErrInvalidDefinition, err)
		}
		dev, err := devices.Get(s.Device)
		if err != nil {
			return fmt.Errorf("circuit %q step %d: %w: %q", d.ID, i+1, ErrUnknownDevice, s.Device)
		}
		if dev.GestureTopic(s.Gesture) == "" {
			return fmt.Errorf("circuit %q step %d: %w: %q does not report %s",
				d.ID, i+1, ErrInvalidDefinition, s.Device, s.Gesture)
		}
		if s.Device == d.ControlDevice {
			inSequence = true
		}
	}
	if !inSequence {
		return fmt.Errorf("circuit %q: %w: control device %q is not part of the sequence",
			d.ID, ErrInvalidDefinition, d.ControlDevice)
	}

	return nil
}
