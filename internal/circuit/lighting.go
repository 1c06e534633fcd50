package circuit

import (
	"github.com/limbx/limbx-core/internal/device"
	"github.com/limbx/limbx-core/internal/light"
)

// Render sends the light command every station of the course should show
// for the instance's current state and progress.
//
// While waiting, the control station pulses in the current color and the
// others follow the idle lighting mode. Once started, stations before the
// current step show the surpassed (or wait) brightness, stations after it
// the wait brightness, and the current station is lit at full brightness
// or pulses when it expects a double tap.
func (i *Instance) Render() {
	seq := i.def.Sequence()

	if i.state.Idle() {
		for _, dev := range seq {
			switch {
			case dev == i.def.ControlDevice:
				i.send(dev, light.FastPulse(i.Color()))
			case i.def.IdleLighting == IdleAllActive:
				i.lightAt(dev, i.waitBrightness())
			default:
				i.send(dev, light.Off())
			}
		}
		return
	}

	for idx, dev := range seq {
		switch {
		case idx < i.index:
			if i.def.SurpassedLight > 0 {
				i.lightAt(dev, light.ScaleBrightness(i.def.SurpassedLight))
			} else {
				i.lightAt(dev, i.waitBrightness())
			}
		case idx > i.index:
			i.lightAt(dev, i.waitBrightness())
		}
	}

	if i.state == StateInProgress && i.index < len(seq) {
		step := i.def.Steps[i.index]
		if step.Gesture == device.GestureDoubleTap {
			i.send(step.Device, light.FastPulse(i.Color()))
		} else {
			i.lightAt(step.Device, light.DefaultBrightness)
		}
	}
}

// waitBrightness returns the 0-255 brightness of stations not yet reached.
func (i *Instance) waitBrightness() int {
	running := i.state == StateInProgress
	switch i.def.OrderMode {
	case OrderFlexible:
		if running && i.def.SurpassedLight == 0 {
			return 0
		}
		if running {
			return light.ScaleBrightness(i.def.SurpassedLight)
		}
		return light.ScaleBrightness(i.def.WaitBrightnessFlexible)
	case OrderStrict, OrderCompetition:
		if running && i.def.SurpassedLight > 0 {
			return light.ScaleBrightness(i.def.SurpassedLight)
		}
		return light.ScaleBrightness(i.def.WaitBrightnessStrict)
	}
	return light.ScaleBrightness(i.def.WaitBrightnessStrict)
}

func (i *Instance) lightAt(dev string, brightness int) {
	i.send(dev, light.On(i.Color(), brightness))
}

func (i *Instance) send(dev string, cmd light.Command) {
	if i.out == nil {
		return
	}
	i.out.Send(dev, cmd)
}
