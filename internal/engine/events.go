package engine

import "github.com/limbx/limbx-core/internal/circuit"

// Event channels broadcast through the Notifier.
const (
	EventCircuitStarted     = "circuit.started"
	EventCircuitAdvanced    = "circuit.advanced"
	EventCircuitCompleted   = "circuit.completed"
	EventCircuitTimeout     = "circuit.timeout"
	EventCircuitDisabled    = "circuit.disabled"
	EventCircuitArmed       = "circuit.armed"
	EventCircuitFinalized   = "circuit.finalized"
	EventInstancesReconcile = "instances.reconciled"
	EventOutcomeUpdated     = "outcome.updated"
)

// ReconcileEvent is the payload of EventInstancesReconcile.
type ReconcileEvent struct {
	Desired   []string           `json:"desired"`
	Unknown   []string           `json:"unknown,omitempty"`
	Instances []circuit.Snapshot `json:"instances"`
}

// observed is the part of an instance compared before and after a call
// to decide which events to emit.
type observed struct {
	state circuit.State
	index int
}

func observe(inst *circuit.Instance) observed {
	return observed{state: inst.State(), index: inst.Index()}
}
