package light

import "fmt"

// Color is an RGB triple as station firmware expects it.
type Color struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// Named colors.
var (
	Red     = Color{R: 255}
	Green   = Color{G: 255}
	Blue    = Color{B: 255}
	Yellow  = Color{R: 255, G: 255}
	Magenta = Color{R: 255, B: 255}
	Cyan    = Color{G: 255, B: 255}
	White   = Color{R: 255, G: 255, B: 255}
)

// ColorCycle is the rotation a player steps through by tapping the
// control station of a variable-color circuit.
var ColorCycle = []Color{Green, Blue, Red, Yellow}

// CelebrationPalette is cycled across the whole course on completion.
var CelebrationPalette = []Color{Red, Green, Blue, Yellow, Magenta, Cyan}

// NextInCycle returns the color after c in ColorCycle. A color outside the
// cycle restarts it at the first entry.
func NextInCycle(c Color) Color {
	for i, cc := range ColorCycle {
		if cc == c {
			return ColorCycle[(i+1)%len(ColorCycle)]
		}
	}
	return ColorCycle[0]
}

// String renders the color as rgb(r,g,b) for logs.
func (c Color) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}
