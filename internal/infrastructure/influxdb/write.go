package influxdb

import (
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the core.
const (
	measurementCircuitOutcome = "circuit_outcome"
	measurementGesture        = "gesture"
)

// WriteCircuitOutcome records one finished circuit run.
//
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - circuitID: Definition identifier (e.g., "rockfit_1")
//   - instanceID: Run identifier (8 hex characters)
//   - outcome: "completed" or "timeout"
//   - duration: Elapsed time from start to the terminal transition
//   - steps: Number of sequence steps in the definition
//   - players: Names assigned to the run (may be empty)
//   - at: Time of the terminal transition
//
// Example:
//
//	client.WriteCircuitOutcome("rockfit_1", "a1b2c3d4", "completed", 42*time.Second, 5, []string{"Ana"}, time.Now())
func (c *Client) WriteCircuitOutcome(circuitID, instanceID, outcome string, duration time.Duration, steps int, players []string, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(outcomePoint(circuitID, instanceID, outcome, duration, steps, players, at))
}

// WriteGesture records one gesture received from a station, whether or not
// the duplicate filter admitted it.
//
// Parameters:
//   - device: Station name (e.g., "tag1")
//   - gesture: "tap" or "double_tap"
//   - admitted: false when the event gate dropped it as a duplicate
func (c *Client) WriteGesture(device, gesture string, admitted bool) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(gesturePoint(device, gesture, admitted, time.Now()))
}

// outcomePoint builds the circuit_outcome point. Tags stay low-cardinality;
// the instance id and players are fields.
func outcomePoint(circuitID, instanceID, outcome string, duration time.Duration, steps int, players []string, at time.Time) *write.Point {
	return write.NewPoint(
		measurementCircuitOutcome,
		map[string]string{
			"circuit_id": circuitID,
			"outcome":    outcome,
		},
		map[string]interface{}{
			"instance_id":      instanceID,
			"duration_seconds": duration.Seconds(),
			"steps":            steps,
			"players":          strings.Join(players, ","),
		},
		at,
	)
}

func gesturePoint(device, gesture string, admitted bool, at time.Time) *write.Point {
	return write.NewPoint(
		measurementGesture,
		map[string]string{
			"device":  device,
			"gesture": gesture,
		},
		map[string]interface{}{
			"admitted": admitted,
			"count":    1,
		},
		at,
	)
}
