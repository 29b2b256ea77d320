// Package listener folds MIDI events from the control surface into the shared state.
package listener

import (
	"context"
	"fmt"

	"github.com/leandrodaf/midibridge/internal/midi/midiwire"
	"github.com/leandrodaf/midibridge/internal/surfacestate"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
)

// Status bytes the surface sends on MIDI channel 1.
const (
	statusNoteOff       = 128
	statusNoteOn        = 144
	statusControlChange = 176

	velocityPressed  = 127
	velocityReleased = 64
)

// Outcome describes what Handle did with an event.
type Outcome int

const (
	// Applied means the event updated a control.
	Applied Outcome = iota
	// UnknownControl means the event had a known shape but its control id is not modelled.
	UnknownControl
	// Unrecognized means the event did not match any known shape.
	Unrecognized
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case UnknownControl:
		return "unknown_control"
	case Unrecognized:
		return "unrecognized"
	}
	return "invalid"
}

// Listener is the only writer of a surfacestate.Shared.
type Listener struct {
	state  *surfacestate.Shared
	logger contracts.Logger
}

// New returns a Listener writing into state.
func New(state *surfacestate.Shared, logger contracts.Logger) *Listener {
	return &Listener{state: state, logger: logger}
}

// Run handles events in arrival order until ctx is done or events is closed.
func (l *Listener) Run(ctx context.Context, events <-chan contracts.MIDI) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			l.Handle(event)
		}
	}
}

// Handle decodes one event and applies it. Only three exact shapes are
// understood: note-on with velocity 127 (press), note-off with velocity 64
// (release) and control change (analog value). Anything else is logged and
// dropped.
func (l *Listener) Handle(event contracts.MIDI) Outcome {
	outcome := l.apply(event.Data)

	if outcome == Unrecognized {
		l.logger.Debug("can't understand message",
			l.logger.Field().Uint64("timestamp", event.Timestamp),
			l.logger.Field().String("message", describe(event.Data)),
			l.logger.Field().Int("len", len(event.Data)))
		return outcome
	}

	l.logger.Debug("MIDI event",
		l.logger.Field().Uint64("timestamp", event.Timestamp),
		l.logger.Field().String("message", describe(event.Data)),
		l.logger.Field().String("outcome", outcome.String()))
	return outcome
}

func (l *Listener) apply(data []byte) Outcome {
	if len(data) != 3 {
		return Unrecognized
	}
	status, control, value := data[0], data[1], data[2]

	var mapped bool
	switch {
	case status == statusNoteOn && value == velocityPressed:
		mapped = l.state.ApplyButton(control, true)
	case status == statusNoteOff && value == velocityReleased:
		mapped = l.state.ApplyButton(control, false)
	case status == statusControlChange:
		mapped = l.state.ApplyAnalog(control, value)
	default:
		return Unrecognized
	}

	if !mapped {
		return UnknownControl
	}
	return Applied
}

// describe renders a message for logs, e.g. "NoteOn channel: 0 key: 41 velocity: 127".
// Incomplete messages are shown as hex.
func describe(data []byte) string {
	if len(data) == 0 {
		return "<empty>"
	}
	if n := midiwire.MessageLength(data[0]); n == 0 || n != len(data) {
		return fmt.Sprintf("[% X]", data)
	}
	return midi.Message(data).String()
}
