package surface

import "fmt"

// Control identifies one modelled control of the surface. Values are the
// byte offsets of the control in the serialized snapshot.
type Control uint8

// Transport and navigation buttons.
const (
	TrackLeft Control = iota
	TrackRight
	Cycle
	MarkerSet
	MarkerLeft
	MarkerRight
	FastLeft
	FastRight
	Stop
	Play
	Record
)

// Analog and per-channel controls. Each group holds Channels consecutive controls.
const (
	Fader0 Control = Record + 1 + iota*Channels
	Knob0
	Solo0
	Mute0
	RecArm0

	controlCount = int(RecArm0) + Channels
)

// Channels is the number of channel strips on the surface.
const Channels = 8

// Size is the length in bytes of a serialized State.
const Size = controlCount

var transportNames = [...]string{
	TrackLeft:   "TrackLeft",
	TrackRight:  "TrackRight",
	Cycle:       "Cycle",
	MarkerSet:   "MarkerSet",
	MarkerLeft:  "MarkerLeft",
	MarkerRight: "MarkerRight",
	FastLeft:    "FastLeft",
	FastRight:   "FastRight",
	Stop:        "Stop",
	Play:        "Play",
	Record:      "Record",
}

// Fader returns the fader control of a channel strip (0-7).
func Fader(channel int) Control { return strip(Fader0, channel) }

// Knob returns the knob control of a channel strip (0-7).
func Knob(channel int) Control { return strip(Knob0, channel) }

// Solo returns the solo button of a channel strip (0-7).
func Solo(channel int) Control { return strip(Solo0, channel) }

// Mute returns the mute button of a channel strip (0-7).
func Mute(channel int) Control { return strip(Mute0, channel) }

// RecArm returns the record-enable button of a channel strip (0-7).
func RecArm(channel int) Control { return strip(RecArm0, channel) }

func strip(base Control, channel int) Control {
	if channel < 0 || channel >= Channels {
		panic(fmt.Sprintf("surface: channel %d out of range", channel))
	}
	return base + Control(channel)
}

// Valid reports whether c names a modelled control.
func (c Control) Valid() bool {
	return int(c) < controlCount
}

// IsButton reports whether c is a two-state control. Faders and knobs are analog.
func (c Control) IsButton() bool {
	return c.Valid() && (c < Fader0 || c >= Solo0)
}

// Channel returns the channel strip of a per-channel control and false for transport buttons.
func (c Control) Channel() (int, bool) {
	if c < Fader0 || !c.Valid() {
		return 0, false
	}
	return int(c-Fader0) % Channels, true
}

// String returns the field name used by the snapshot layout, e.g. "Play", "Fader3" or "S0".
func (c Control) String() string {
	switch {
	case c < Fader0:
		return transportNames[c]
	case c < Knob0:
		return fmt.Sprintf("Fader%d", c-Fader0)
	case c < Solo0:
		return fmt.Sprintf("Knob%d", c-Knob0)
	case c < Mute0:
		return fmt.Sprintf("S%d", c-Solo0)
	case c < RecArm0:
		return fmt.Sprintf("M%d", c-Mute0)
	case c.Valid():
		return fmt.Sprintf("R%d", c-RecArm0)
	}
	return fmt.Sprintf("Control(%d)", uint8(c))
}

// Controls returns every control in wire order.
func Controls() []Control {
	out := make([]Control, controlCount)
	for i := range out {
		out[i] = Control(i)
	}
	return out
}

const unmapped = 0xFF

// Device id lookup tables. unmapped marks ids the surface model does not know.
var (
	buttonIDs [256]Control
	analogIDs [256]Control
)

func init() {
	for i := range buttonIDs {
		buttonIDs[i] = unmapped
		analogIDs[i] = unmapped
	}

	buttonIDs[0x3A] = TrackLeft
	buttonIDs[0x3B] = TrackRight
	buttonIDs[0x2E] = Cycle
	buttonIDs[0x3C] = MarkerSet
	buttonIDs[0x3D] = MarkerLeft
	buttonIDs[0x3E] = MarkerRight
	buttonIDs[0x2B] = FastLeft
	buttonIDs[0x2C] = FastRight
	buttonIDs[0x2A] = Stop
	buttonIDs[0x29] = Play
	buttonIDs[0x2D] = Record

	for ch := 0; ch < Channels; ch++ {
		buttonIDs[0x20+ch] = Solo(ch)
		buttonIDs[0x30+ch] = Mute(ch)
		buttonIDs[0x40+ch] = RecArm(ch)

		analogIDs[0x00+ch] = Fader(ch)
		analogIDs[0x10+ch] = Knob(ch)
	}
}

// ButtonControl maps a note number sent by the surface to a button.
func ButtonControl(id byte) (Control, bool) {
	c := buttonIDs[id]
	return c, c != unmapped
}

// AnalogControl maps a controller number sent by the surface to a fader or knob.
func AnalogControl(id byte) (Control, bool) {
	c := analogIDs[id]
	return c, c != unmapped
}
