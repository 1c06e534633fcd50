package light

import (
	"encoding/json"
	"fmt"
)

// DefaultBrightness is full brightness on the 0-255 firmware scale.
const DefaultBrightness = 255

// Power states.
const (
	StateOn  = "ON"
	StateOff = "OFF"
)

// Effect names understood by the station firmware. Any other name is
// passed through verbatim.
const (
	EffectNone          = "none"
	EffectPulse         = "pulse"
	EffectFastPulse     = "Fast Pulse"
	EffectSlowPulse     = "Slow Pulse"
	EffectRandom        = "random"
	EffectSlowRandom    = "My Slow Random Effect"
	EffectFastRandom    = "My Fast Random Effect"
	EffectStrobe        = "strobe"
	EffectStrobeCustom  = "Strobe Effect With Custom Values"
	EffectFlicker       = "flicker"
	EffectFlickerCustom = "Flicker Effect With Custom Values"
)

// Command is the JSON document published on a light command topic.
//
// Brightness and Color are pointers so an explicit zero brightness is
// still sent, while OFF and bare effect commands omit them.
type Command struct {
	State      string `json:"state"`
	Brightness *int   `json:"brightness,omitempty"`
	Color      *Color `json:"color,omitempty"`
	Effect     string `json:"effect,omitempty"`
}

// Off returns the command that switches a station off.
func Off() Command {
	return Command{State: StateOff}
}

// On returns a steady light command with no effect.
func On(c Color, brightness int) Command {
	b := clampBrightness(brightness)
	return Command{
		State:      StateOn,
		Brightness: &b,
		Color:      &c,
		Effect:     EffectNone,
	}
}

// Effect returns a bare effect command; the firmware keeps its current
// color and brightness.
func Effect(name string) Command {
	return Command{State: StateOn, Effect: name}
}

// FastPulse returns the Fast Pulse effect in the given color at full
// brightness. This is how a station signals "touch me next".
func FastPulse(c Color) Command {
	cmd := Effect(EffectFastPulse)
	b := DefaultBrightness
	cmd.Color = &c
	cmd.Brightness = &b
	return cmd
}

// Marshal encodes the command as JSON.
func (c Command) Marshal() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding light command: %w", err)
	}
	return data, nil
}

// ScaleBrightness converts a 0-100 percentage into the firmware scale,
// truncating toward zero.
func ScaleBrightness(percent int) int {
	return clampBrightness(percent * DefaultBrightness / 100)
}

func clampBrightness(b int) int {
	switch {
	case b < 0:
		return 0
	case b > DefaultBrightness:
		return DefaultBrightness
	default:
		return b
	}
}
