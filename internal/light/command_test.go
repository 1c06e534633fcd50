package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandJSON(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "off",
			cmd:  Off(),
			want: `{"state":"OFF"}`,
		},
		{
			name: "steady on",
			cmd:  On(Green, 127),
			want: `{"state":"ON","brightness":127,"color":{"r":0,"g":255,"b":0},"effect":"none"}`,
		},
		{
			name: "zero brightness is still sent",
			cmd:  On(Blue, 0),
			want: `{"state":"ON","brightness":0,"color":{"r":0,"g":0,"b":255},"effect":"none"}`,
		},
		{
			name: "fast pulse carries color and full brightness",
			cmd:  FastPulse(Red),
			want: `{"state":"ON","brightness":255,"color":{"r":255,"g":0,"b":0},"effect":"Fast Pulse"}`,
		},
		{
			name: "known effect",
			cmd:  Effect(EffectStrobe),
			want: `{"state":"ON","effect":"strobe"}`,
		},
		{
			name: "unknown effect passes through",
			cmd:  Effect("Rainbow Swirl"),
			want: `{"state":"ON","effect":"Rainbow Swirl"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.cmd.Marshal()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestOn_ClampsBrightness(t *testing.T) {
	assert.Equal(t, DefaultBrightness, *On(White, 400).Brightness)
	assert.Equal(t, 0, *On(White, -3).Brightness)
}

func TestScaleBrightness(t *testing.T) {
	tests := []struct {
		percent int
		want    int
	}{
		{0, 0},
		{20, 51},
		{25, 63},
		{50, 127},
		{60, 153},
		{100, 255},
		{150, 255},
		{-10, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScaleBrightness(tt.percent), "ScaleBrightness(%d)", tt.percent)
	}
}

func TestNextInCycle(t *testing.T) {
	assert.Equal(t, Blue, NextInCycle(Green))
	assert.Equal(t, Red, NextInCycle(Blue))
	assert.Equal(t, Yellow, NextInCycle(Red))
	assert.Equal(t, Green, NextInCycle(Yellow), "wraps around")
	assert.Equal(t, Green, NextInCycle(Magenta), "unknown color restarts the cycle")
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "rgb(255,0,255)", Magenta.String())
}
