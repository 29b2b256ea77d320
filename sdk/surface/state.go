package surface

import (
	"encoding/json"

	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// State is the complete state of the surface at one instant. The zero value
// has every button released and every analog control at 0.
//
// State is a plain value with no locking; the server shares it behind a
// reader-writer lock.
type State struct {
	values [Size]byte
}

// ApplyButton sets the button mapped to id. Unknown ids are ignored and
// reported with false.
func (s *State) ApplyButton(id byte, pressed bool) bool {
	c, ok := ButtonControl(id)
	if !ok {
		return false
	}
	s.values[c] = boolByte(pressed)
	return true
}

// ApplyAnalog stores the latest value of the fader or knob mapped to id.
// Unknown ids are ignored and reported with false.
func (s *State) ApplyAnalog(id byte, value byte) bool {
	c, ok := AnalogControl(id)
	if !ok {
		return false
	}
	s.values[c] = value
	return true
}

// Value returns the raw byte stored for c: 0/1 for buttons, 0-255 for analog controls.
func (s State) Value(c Control) byte {
	if !c.Valid() {
		return 0
	}
	return s.values[c]
}

// Pressed reports whether a button is engaged. Analog controls report a non-zero value.
func (s State) Pressed(c Control) bool {
	return s.Value(c) != 0
}

// Serialize returns the Size-byte wire representation, one byte per control in wire order.
func (s State) Serialize() []byte {
	out := make([]byte, Size)
	copy(out, s.values[:])
	return out
}

// Deserialize rebuilds a State from exactly Size bytes. Any other length fails
// with contracts.ErrSizeMismatch. Button bytes other than 0 are read as pressed.
func Deserialize(data []byte) (State, error) {
	var s State
	if len(data) != Size {
		return s, &contracts.SizeMismatchError{Got: len(data), Want: Size}
	}
	for i, b := range data {
		if Control(i).IsButton() {
			b = boolByte(b != 0)
		}
		s.values[i] = b
	}
	return s, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (s State) MarshalBinary() ([]byte, error) {
	return s.Serialize(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *State) UnmarshalBinary(data []byte) error {
	decoded, err := Deserialize(data)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Field is a named control value, used for rendering.
type Field struct {
	Control Control
	Name    string
	Value   byte
	Button  bool
}

// Fields lists every control with its current value in wire order.
func (s State) Fields() []Field {
	fields := make([]Field, 0, Size)
	for _, c := range Controls() {
		fields = append(fields, Field{
			Control: c,
			Name:    c.String(),
			Value:   s.values[c],
			Button:  c.IsButton(),
		})
	}
	return fields
}

// MarshalJSON renders the state as an object keyed by field name. Buttons
// are booleans, faders and knobs numbers.
func (s State) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, Size)
	for _, f := range s.Fields() {
		if f.Button {
			obj[f.Name] = f.Value != 0
		} else {
			obj[f.Name] = int(f.Value)
		}
	}
	return json.Marshal(obj)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
