package engine

import (
	"fmt"

	"github.com/limbx/limbx-core/internal/circuit"
)

// Reconcile makes the live set match the desired circuit ids.
//
// Instances of ids no longer desired are dropped, as are completed and
// timed-out ones. Waiting, running and disabled instances of desired ids
// are kept. Every desired id left without an instance gets a new waiting
// one with its idle lighting. Ids missing from the catalog are logged and
// skipped.
//
// Parameters:
//   - ids: The circuit ids that should be playable, in display order
//
// Returns:
//   - []string: Ids that were skipped because no valid definition exists
func (e *Engine) Reconcile(ids []string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := make(map[string]struct{}, len(ids))
	desired := make([]string, 0, len(ids))
	var unknown []string
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if !e.catalog.Has(id) {
			e.logger.Warn("unknown circuit id skipped", "circuit", id)
			unknown = append(unknown, id)
			continue
		}
		desired = append(desired, id)
	}
	e.desired = desired

	kept := e.live[:0]
	for _, inst := range e.live {
		st := inst.State()
		if e.isDesired(inst.CircuitID()) && st != circuit.StateCompleted && st != circuit.StateTimeout {
			kept = append(kept, inst)
			continue
		}
		e.logger.Info("instance dropped", "circuit", inst.CircuitID(), "instance_id", inst.ID(), "state", st)
	}
	for i := len(kept); i < len(e.live); i++ {
		e.live[i] = nil
	}
	e.live = kept

	for _, id := range e.desired {
		if e.hasSlotLocked(id) {
			continue
		}
		if _, err := e.spawnLocked(id); err != nil {
			e.logger.Error("creating instance", "circuit", id, "error", err)
		}
	}

	e.broadcast(EventInstancesReconcile, ReconcileEvent{
		Desired:   append([]string(nil), e.desired...),
		Unknown:   unknown,
		Instances: e.snapshotsLocked(),
	})
	return unknown
}

// hasSlotLocked reports whether id already has a live instance that is
// playable or parked as disabled.
func (e *Engine) hasSlotLocked(id string) bool {
	for _, inst := range e.live {
		if inst.CircuitID() != id {
			continue
		}
		st := inst.State()
		if st != circuit.StateCompleted && st != circuit.StateTimeout {
			return true
		}
	}
	return false
}

// Respawn creates a fresh waiting instance of id when it is still desired
// and no other live instance occupies its slot. It reports whether an
// instance was created.
func (e *Engine) Respawn(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.respawnLocked(id)
}

func (e *Engine) respawnLocked(id string) bool {
	if e.closed || !e.isDesired(id) || e.hasSlotLocked(id) {
		return false
	}
	inst, err := e.spawnLocked(id)
	if err != nil {
		e.logger.Error("respawning instance", "circuit", id, "error", err)
		return false
	}
	e.broadcast(EventCircuitArmed, inst.Snapshot())
	return true
}

// Desired returns the desired circuit ids in display order.
func (e *Engine) Desired() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.desired...)
}

// RestartAll returns every live instance that is not waiting or disabled
// to its armed state.
func (e *Engine) RestartAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, inst := range e.snapshotLive() {
		st := inst.State()
		if st == circuit.StateWaiting || st == circuit.StateDisabled {
			continue
		}
		prev := observe(inst)
		inst.Restart()
		e.afterChange(inst, prev)
	}
}

// DeactivateAll disables every live instance.
func (e *Engine) DeactivateAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, inst := range e.snapshotLive() {
		prev := observe(inst)
		inst.Deactivate()
		e.afterChange(inst, prev)
	}
}

// ─── Instance Operations ────────────────────────────────────────────

// Instances returns a snapshot of every live instance.
func (e *Engine) Instances() []circuit.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotsLocked()
}

func (e *Engine) snapshotsLocked() []circuit.Snapshot {
	out := make([]circuit.Snapshot, 0, len(e.live))
	for _, inst := range e.live {
		out = append(out, inst.Snapshot())
	}
	return out
}

// Instance returns a snapshot of one live instance.
func (e *Engine) Instance(instanceID string) (circuit.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inst, err := e.findLocked(instanceID)
	if err != nil {
		return circuit.Snapshot{}, err
	}
	return inst.Snapshot(), nil
}

// SkipStep satisfies the current step of an instance by hand.
func (e *Engine) SkipStep(instanceID string) (circuit.Snapshot, error) {
	return e.apply(instanceID, func(inst *circuit.Instance) error {
		return inst.SkipStep()
	})
}

// Complete forces an instance to complete.
func (e *Engine) Complete(instanceID string) (circuit.Snapshot, error) {
	return e.apply(instanceID, func(inst *circuit.Instance) error {
		return inst.Complete()
	})
}

// Deactivate disables an instance and switches its course off.
func (e *Engine) Deactivate(instanceID string) (circuit.Snapshot, error) {
	return e.apply(instanceID, func(inst *circuit.Instance) error {
		inst.Deactivate()
		return nil
	})
}

// Restart returns an instance to waiting.
func (e *Engine) Restart(instanceID string) (circuit.Snapshot, error) {
	return e.apply(instanceID, func(inst *circuit.Instance) error {
		inst.Restart()
		return nil
	})
}

// AssignPlayers sets the players of a live instance.
func (e *Engine) AssignPlayers(instanceID string, names []string) (circuit.Snapshot, error) {
	return e.apply(instanceID, func(inst *circuit.Instance) error {
		inst.AssignPlayers(names)
		return nil
	})
}

// apply runs op on a live instance under the engine lock, then emits the
// events for whatever transition it caused. The returned snapshot is
// taken after the operation.
func (e *Engine) apply(instanceID string, op func(*circuit.Instance) error) (circuit.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return circuit.Snapshot{}, ErrClosed
	}
	inst, err := e.findLocked(instanceID)
	if err != nil {
		return circuit.Snapshot{}, err
	}

	prev := observe(inst)
	if err := op(inst); err != nil {
		return inst.Snapshot(), fmt.Errorf("instance %s: %w", instanceID, err)
	}
	snap := inst.Snapshot()
	if observe(inst) != prev {
		e.afterChange(inst, prev)
	}
	return snap, nil
}

// LogSummary logs one line per live instance.
func (e *Engine) LogSummary() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.logger.Info("active circuits", "count", len(e.live))
	for _, inst := range e.live {
		def := inst.Definition()
		e.logger.Info("active circuit",
			"circuit", def.Name,
			"instance_id", inst.ID(),
			"control", def.ControlDevice,
			"color", inst.Color(),
			"order_mode", def.OrderMode,
			"start_gesture", def.Steps[0].Gesture,
		)
	}
}
