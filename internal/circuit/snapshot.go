package circuit

import (
	"time"

	"github.com/limbx/limbx-core/internal/light"
)

// Snapshot is a point-in-time copy of an instance, safe to hand out
// after the engine lock is released.
type Snapshot struct {
	InstanceID   string        `json:"instance_id"`
	CircuitID    string        `json:"circuit_id"`
	Name         string        `json:"name"`
	State        State         `json:"state"`
	Index        int           `json:"index"`
	Steps        int           `json:"steps"`
	OrderMode    OrderMode     `json:"order_mode"`
	Color        light.Color   `json:"color"`
	Players      []string      `json:"players"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	TotalSeconds float64       `json:"total_seconds"`
	Events       []EventRecord `json:"events"`
}

// Snapshot returns a copy of the instance's observable state.
func (i *Instance) Snapshot() Snapshot {
	s := Snapshot{
		InstanceID:   i.id,
		CircuitID:    i.def.ID,
		Name:         i.def.Name,
		State:        i.state,
		Index:        i.index,
		Steps:        len(i.def.Steps),
		OrderMode:    i.def.OrderMode,
		Color:        i.Color(),
		Players:      i.Players(),
		TotalSeconds: i.total.Seconds(),
		Events:       i.Events(),
	}
	if !i.startedAt.IsZero() {
		started := i.startedAt
		s.StartedAt = &started
	}
	return s
}
