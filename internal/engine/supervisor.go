package engine

import (
	"time"

	"github.com/limbx/limbx-core/internal/circuit"
	"github.com/limbx/limbx-core/internal/light"
)

// onFinished archives a run that just completed or timed out, then either
// plays its animation and finalizes afterwards or finalizes right away.
// Caller holds e.mu.
func (e *Engine) onFinished(inst *circuit.Instance, outcome string) {
	now := e.now()
	record := newOutcome(inst, outcome, now)
	e.archive.Append(record)

	if e.telemetry != nil {
		e.telemetry.WriteCircuitOutcome(
			record.CircuitID,
			record.InstanceID,
			outcome,
			inst.TotalTime(),
			len(record.Steps),
			record.Players,
			now,
		)
	}

	event := EventCircuitCompleted
	if outcome == OutcomeTimeout {
		event = EventCircuitTimeout
	}
	e.broadcast(event, record)

	anim := e.cfg.Animation
	switch {
	case outcome == OutcomeTimeout:
		e.startAnimation(inst, anim.FailureDuration, anim.FailureInterval, failureFrame)
	case inst.Definition().CompletionEffect == circuit.CompletionCelebration:
		e.startAnimation(inst, anim.CelebrationDuration, anim.CelebrationInterval, celebrationFrame)
	default:
		e.finalizeLocked(inst)
	}
}

// frameFunc returns the command shown on every station for frame n.
type frameFunc func(n int) light.Command

func celebrationFrame(n int) light.Command {
	palette := light.CelebrationPalette
	return light.On(palette[n%len(palette)], light.DefaultBrightness)
}

func failureFrame(n int) light.Command {
	if n%2 == 0 {
		return light.On(light.Red, light.DefaultBrightness)
	}
	return light.Off()
}

// startAnimation plays frames on the course of inst every interval for
// duration, then finalizes it. Caller holds e.mu.
func (e *Engine) startAnimation(inst *circuit.Instance, duration, interval time.Duration, frame frameFunc) {
	if e.closed {
		return
	}
	e.wg.Add(1)
	go e.animate(inst, inst.ID(), inst.State(), duration, interval, frame)
}

// animate runs in its own goroutine. Each frame is published only while
// inst is still live with the id and state it finished with; a restart,
// deactivation or reconcile in the meantime ends the animation without
// finalizing. Engine shutdown ends it the same way.
func (e *Engine) animate(inst *circuit.Instance, id string, finished circuit.State, duration, interval time.Duration, frame frameFunc) {
	defer e.wg.Done()

	deadline := time.NewTimer(duration)
	defer deadline.Stop()

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	n := 0
	show := func() bool {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || !e.isLive(inst) || inst.ID() != id || inst.State() != finished {
			return false
		}
		cmd := frame(n)
		for _, dev := range inst.Definition().Sequence() {
			e.Send(dev, cmd)
		}
		n++
		return true
	}

	if !show() {
		return
	}
	for {
		select {
		case <-e.ctx.Done():
			return
		case <-tick:
			if !show() {
				e.logger.Debug("animation stopped", "circuit", inst.CircuitID(), "instance_id", inst.ID())
				return
			}
		case <-deadline.C:
			e.mu.Lock()
			if !e.closed && inst.ID() == id && inst.State() == finished {
				e.finalizeLocked(inst)
			}
			e.mu.Unlock()
			return
		}
	}
}

// finalizeLocked removes a finished instance and respawns its circuit.
// Caller holds e.mu.
func (e *Engine) finalizeLocked(inst *circuit.Instance) {
	if !e.removeLive(inst) {
		return
	}
	e.logger.Info("instance finalized", "circuit", inst.CircuitID(), "instance_id", inst.ID(), "state", inst.State())
	e.broadcast(EventCircuitFinalized, inst.Snapshot())
	e.respawnLocked(inst.CircuitID())
}
