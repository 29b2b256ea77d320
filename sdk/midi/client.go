package midi

import (
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// NewMIDIClient creates a MIDI input client for the current platform.
// Defaults: zap logger at info level, CoreMIDI client name "midibridge",
// no event filter.
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(&options)
	if err != nil {
		return nil, err
	}

	return client, nil
}
