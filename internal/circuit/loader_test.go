package circuit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limbx/limbx-core/internal/device"
	"github.com/limbx/limbx-core/internal/light"
)

const circuitsYAML = `
circuits:
  - id: warmup
    name: Warm-up
    description: Three stations, tap each
    steps:
      - {order: 2, device: b, event: tap}
      - {order: 1, device: a, event: tap}
      - {order: 3, device: c, event: double_tap}
  - id: relay
    control_device: b
    color_initial: {r: 255, g: 0, b: 0}
    color_mode: fixed
    max_time: 45
    completion_effect: none
    order_mode: flexible
    idle_lighting: all_active
    surpassed_light: 10
    wait_brightness_flexible: 70
    steps:
      - {order: 1, device: b, event: double_tap}
      - {order: 2, device: a, event: tap, bonus: true}
`

func TestParseDefinitions(t *testing.T) {
	catalog, err := ParseDefinitions([]byte(circuitsYAML), testRegistry(t))
	require.NoError(t, err)
	require.Equal(t, 2, catalog.Len())

	warmup, err := catalog.Get("warmup")
	require.NoError(t, err)
	assert.Equal(t, "Warm-up", warmup.Name)
	assert.Equal(t, []string{"a", "b", "c"}, warmup.Sequence(), "steps sorted by order")
	assert.Equal(t, "a", warmup.ControlDevice, "defaults to first step")
	assert.Equal(t, light.Green, warmup.InitialColor)
	assert.Equal(t, ColorVariable, warmup.ColorMode)
	assert.Equal(t, CompletionCelebration, warmup.CompletionEffect)
	assert.Equal(t, OrderStrict, warmup.OrderMode)
	assert.Equal(t, IdleOnlyActive, warmup.IdleLighting)
	assert.Equal(t, 50, warmup.WaitBrightnessStrict)
	assert.Equal(t, 60, warmup.WaitBrightnessFlexible)
	assert.Zero(t, warmup.MaxDuration())

	relay, err := catalog.Get("relay")
	require.NoError(t, err)
	assert.Equal(t, "relay", relay.Name, "name defaults to id")
	assert.Equal(t, "b", relay.ControlDevice)
	assert.Equal(t, light.Red, relay.InitialColor)
	assert.Equal(t, ColorFixed, relay.ColorMode)
	assert.Equal(t, int64(45), int64(relay.MaxDuration().Seconds()))
	assert.Equal(t, OrderFlexible, relay.OrderMode)
	assert.Equal(t, IdleAllActive, relay.IdleLighting)
	assert.Equal(t, 10, relay.SurpassedLight)
	assert.Equal(t, 70, relay.WaitBrightnessFlexible)
	assert.True(t, relay.Steps[1].Bonus)

	ids := []string{}
	for _, d := range catalog.List() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"warmup", "relay"}, ids, "file order")
}

func TestParseDefinitions_StableTieBreak(t *testing.T) {
	data := `
circuits:
  - id: ties
    steps:
      - {order: 1, device: c, event: tap}
      - {order: 1, device: a, event: tap}
      - {order: 0, device: b, event: tap}
`
	catalog, err := ParseDefinitions([]byte(data), testRegistry(t))
	require.NoError(t, err)

	def, err := catalog.Get("ties")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, def.Sequence())
}

func TestParseDefinitions_InvalidAreSkipped(t *testing.T) {
	data := `
circuits:
  - id: good
    steps:
      - {order: 1, device: a, event: tap}
  - id: race
    order_mode: competition
    steps:
      - {order: 1, device: a, event: tap}
  - id: ghost
    steps:
      - {order: 1, device: nobody, event: tap}
  - id: good
    steps:
      - {order: 1, device: b, event: tap}
`
	catalog, err := ParseDefinitions([]byte(data), testRegistry(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.ErrorIs(t, err, ErrUnknownDevice)
	assert.ErrorIs(t, err, ErrDuplicateCircuit)

	require.NotNil(t, catalog)
	assert.Equal(t, 1, catalog.Len())
	assert.True(t, catalog.Has("good"))
	assert.False(t, catalog.Has("race"))
}

func TestParseDefinitions_BadYAML(t *testing.T) {
	catalog, err := ParseDefinitions([]byte("circuits: [unterminated"), testRegistry(t))
	assert.Error(t, err)
	assert.Nil(t, catalog)
}

func TestLoadDefinitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circuits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(circuitsYAML), 0o600))

	catalog, err := LoadDefinitions(path, testRegistry(t))
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Len())
}

func TestLoadDefinitions_MissingFile(t *testing.T) {
	_, err := LoadDefinitions(filepath.Join(t.TempDir(), "nope.yaml"), testRegistry(t))
	assert.Error(t, err)
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr error
	}{
		{"valid", func(*Definition) {}, nil},
		{"missing id", func(d *Definition) { d.ID = "" }, ErrInvalidDefinition},
		{"no steps", func(d *Definition) { d.Steps = nil }, ErrInvalidDefinition},
		{"competition", func(d *Definition) { d.OrderMode = OrderCompetition }, ErrNotImplemented},
		{"unknown order mode", func(d *Definition) { d.OrderMode = "random" }, ErrInvalidDefinition},
		{"unknown color mode", func(d *Definition) { d.ColorMode = "rainbow" }, ErrInvalidDefinition},
		{"unknown effect", func(d *Definition) { d.CompletionEffect = "fireworks" }, ErrInvalidDefinition},
		{"unknown idle lighting", func(d *Definition) { d.IdleLighting = "dim" }, ErrInvalidDefinition},
		{"negative max time", func(d *Definition) { d.MaxTime = -1 }, ErrInvalidDefinition},
		{"brightness above 100", func(d *Definition) { d.SurpassedLight = 101 }, ErrInvalidDefinition},
		{"bad gesture", func(d *Definition) { d.Steps[0].Gesture = "triple_tap" }, ErrInvalidDefinition},
		{"unknown device", func(d *Definition) { d.Steps[1].Device = "zz" }, ErrUnknownDevice},
		{"tile has no gestures", func(d *Definition) { d.Steps[1].Device = "t1" }, ErrInvalidDefinition},
		{"control outside sequence", func(d *Definition) { d.ControlDevice = "c" }, ErrInvalidDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition(
				step(1, "a", device.GestureTap),
				step(2, "b", device.GestureTap),
			)
			tt.mutate(def)

			err := def.Validate(testRegistry(t))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewCatalogFrom_Duplicate(t *testing.T) {
	d := *abcTaps()

	_, err := NewCatalogFrom(d, d)
	assert.ErrorIs(t, err, ErrDuplicateCircuit)
}

func TestCatalog_GetMissing(t *testing.T) {
	_, err := NewCatalog().Get("nope")
	assert.ErrorIs(t, err, ErrCircuitNotFound)
}
