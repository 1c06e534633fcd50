package device

// Kind classifies a station by its sensor hardware.
type Kind string

// Station kinds.
const (
	// KindTag is an accelerometer tag reporting tap and double tap gestures.
	KindTag Kind = "tag"

	// KindTile is a load-cell floor tile. Tiles are lit by circuits but
	// their sensor channel does not produce gestures.
	KindTile Kind = "tile"
)

// AllKinds returns every recognised station kind.
func AllKinds() []Kind {
	return []Kind{KindTag, KindTile}
}

// Gesture is a discrete physical action reported by a tag.
type Gesture string

// Gestures.
const (
	GestureTap       Gesture = "tap"
	GestureDoubleTap Gesture = "double_tap"
)

// AllGestures returns every recognised gesture.
func AllGestures() []Gesture {
	return []Gesture{GestureTap, GestureDoubleTap}
}

// ParseGesture converts a configuration string into a Gesture.
func ParseGesture(s string) (Gesture, error) {
	switch Gesture(s) {
	case GestureTap, GestureDoubleTap:
		return Gesture(s), nil
	default:
		return "", ErrInvalidGesture
	}
}

// Device is one physical station with its MQTT channels.
// Devices are immutable once the Registry is built.
type Device struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	// Gesture channels (tags only).
	TapTopic       string `json:"tap_topic,omitempty"`
	DoubleTapTopic string `json:"double_tap_topic,omitempty"`

	// LoadcellTopic carries tile weight readings (tiles only).
	LoadcellTopic string `json:"loadcell_topic,omitempty"`

	// LightTopic receives light commands. Empty means the station has no
	// actuator and commands addressed to it are dropped.
	LightTopic string `json:"light_topic,omitempty"`

	// Threshold is the tile load trigger level.
	Threshold float64 `json:"threshold,omitempty"`
}

// GestureTopic returns the channel a gesture arrives on, or "" when the
// device does not report that gesture.
func (d Device) GestureTopic(g Gesture) string {
	switch g {
	case GestureTap:
		return d.TapTopic
	case GestureDoubleTap:
		return d.DoubleTapTopic
	default:
		return ""
	}
}
