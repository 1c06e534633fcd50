package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/limbx/limbx-core/internal/device"
	"github.com/limbx/limbx-core/internal/infrastructure/config"
	"github.com/limbx/limbx-core/internal/light"
)

// ─── Mock Dependencies ──────────────────────────────────────────────

type sentCommand struct {
	device string
	cmd    light.Command
}

// recordingOutput captures every light command in order.
type recordingOutput struct {
	sent []sentCommand
}

func (r *recordingOutput) Send(dev string, cmd light.Command) {
	r.sent = append(r.sent, sentCommand{device: dev, cmd: cmd})
}

// last returns the most recent command sent to dev.
func (r *recordingOutput) last(t *testing.T, dev string) light.Command {
	t.Helper()
	for i := len(r.sent) - 1; i >= 0; i-- {
		if r.sent[i].device == dev {
			return r.sent[i].cmd
		}
	}
	t.Fatalf("no command sent to %s", dev)
	return light.Command{}
}

func (r *recordingOutput) reset() { r.sent = nil }

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// ─── Fixtures ───────────────────────────────────────────────────────

var testTopics = config.TopicsConfig{
	TagTap:       "devices/{name}/tap",
	TagDoubleTap: "devices/{name}/double_tap",
	TagLight:     "devices/{name}/light",
	TileLoadcell: "devices/{name}/loadcell",
	TileLight:    "devices/{name}/tile_light",
}

func tapTopic(dev string) string       { return "devices/" + dev + "/tap" }
func doubleTapTopic(dev string) string { return "devices/" + dev + "/double_tap" }

func testRegistry(t *testing.T) *device.Registry {
	t.Helper()
	reg, err := device.NewRegistry([]config.DeviceConfig{
		{Name: "a", Type: "tag"},
		{Name: "b", Type: "tag"},
		{Name: "c", Type: "tag"},
		{Name: "t1", Type: "tile"},
	}, testTopics)
	require.NoError(t, err)
	return reg
}

// testDefinition returns a normalized strict course over the given steps.
func testDefinition(steps ...Step) *Definition {
	def := defaultDefinition()
	def.ID = "c1"
	def.Steps = steps
	def.normalize()
	return &def
}

func step(order int, dev string, g device.Gesture) Step {
	return Step{Order: order, Device: dev, Gesture: g}
}

// abcTaps is a three-station course played with single taps.
func abcTaps() *Definition {
	return testDefinition(
		step(1, "a", device.GestureTap),
		step(2, "b", device.GestureTap),
		step(3, "c", device.GestureTap),
	)
}

func newTestInstance(t *testing.T, def *Definition) (*Instance, *recordingOutput, *fakeClock) {
	t.Helper()
	out := &recordingOutput{}
	clk := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	inst, err := NewInstance(def, testRegistry(t), out, WithClock(clk.Now))
	require.NoError(t, err)
	return inst, out, clk
}
