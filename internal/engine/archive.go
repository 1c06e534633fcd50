package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/limbx/limbx-core/internal/circuit"
	"github.com/limbx/limbx-core/internal/light"
)

// Outcome values recorded in the archive.
const (
	OutcomeCompleted = "completed"
	OutcomeTimeout   = "timeout"
)

// Outcome is the archived record of one finished run.
type Outcome struct {
	InstanceID   string                `json:"instance_id"`
	CircuitID    string                `json:"circuit_id"`
	Name         string                `json:"name"`
	Outcome      string                `json:"outcome"`
	Players      []string              `json:"players"`
	TotalSeconds float64               `json:"total_seconds"`
	Events       []circuit.EventRecord `json:"events"`
	Steps        []circuit.Step        `json:"steps"`
	FinalColor   light.Color           `json:"final_color"`
	FinishedAt   time.Time             `json:"finished_at"`
}

// Duration returns the run time as a time.Duration.
func (o Outcome) Duration() time.Duration {
	return time.Duration(o.TotalSeconds * float64(time.Second))
}

// newOutcome captures a terminal instance.
func newOutcome(inst *circuit.Instance, outcome string, at time.Time) Outcome {
	def := inst.Definition()
	steps := make([]circuit.Step, len(def.Steps))
	copy(steps, def.Steps)
	return Outcome{
		InstanceID:   inst.ID(),
		CircuitID:    inst.CircuitID(),
		Name:         inst.Name(),
		Outcome:      outcome,
		Players:      inst.Players(),
		TotalSeconds: inst.TotalTime().Seconds(),
		Events:       inst.Events(),
		Steps:        steps,
		FinalColor:   inst.Color(),
		FinishedAt:   at,
	}
}

// Archive is the append-only list of finished runs kept in memory.
//
// Entries never change once appended, except for their player list.
// Archive is safe for concurrent use.
type Archive struct {
	mu    sync.RWMutex
	items []Outcome
}

// NewArchive returns an empty archive.
func NewArchive() *Archive {
	return &Archive{}
}

// Append records a finished run.
func (a *Archive) Append(o Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items = append(a.items, o)
}

// List returns every outcome, oldest first.
func (a *Archive) List() []Outcome {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Outcome, len(a.items))
	for i, o := range a.items {
		out[i] = cloneOutcome(o)
	}
	return out
}

// Get returns the outcome of the given instance.
func (a *Archive) Get(instanceID string) (Outcome, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, o := range a.items {
		if o.InstanceID == instanceID {
			return cloneOutcome(o), nil
		}
	}
	return Outcome{}, fmt.Errorf("%w: %q", ErrOutcomeNotFound, instanceID)
}

// AssignPlayers replaces the players of an archived run.
func (a *Archive) AssignPlayers(instanceID string, names []string) (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.items {
		if a.items[i].InstanceID == instanceID {
			a.items[i].Players = append([]string(nil), names...)
			return cloneOutcome(a.items[i]), nil
		}
	}
	return Outcome{}, fmt.Errorf("%w: %q", ErrOutcomeNotFound, instanceID)
}

// Len returns the number of archived runs.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.items)
}

func cloneOutcome(o Outcome) Outcome {
	o.Players = append([]string(nil), o.Players...)
	o.Events = append([]circuit.EventRecord(nil), o.Events...)
	o.Steps = append([]circuit.Step(nil), o.Steps...)
	return o
}
