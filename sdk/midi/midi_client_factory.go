package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/midibridge/internal/midi/mididarwin"
	"github.com/leandrodaf/midibridge/internal/midi/midirtmidi"
	"github.com/leandrodaf/midibridge/internal/midi/midiwindows"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// ErrUnsupportedOS is returned when the operating system is not supported by the MIDI client.
var ErrUnsupportedOS = errors.New("unsupported operating system")

// clientInitializers maps OS names to corresponding MIDI client initializers.
var clientInitializers = map[string]func(*contracts.ClientOptions) (contracts.ClientMIDI, error){
	"darwin":  mididarwin.NewMIDIClient,  // macOS (Darwin) CoreMIDI client initializer.
	"windows": midiwindows.NewMIDIClient, // Windows winmm client initializer.
	"linux":   midirtmidi.NewMIDIClient,  // Linux ALSA (rtmidi) client initializer.
}

// NewClient initializes a MIDI client based on the current operating system.
// It returns ErrUnsupportedOS (which also matches contracts.ErrDeviceUnavailable)
// when no driver exists for runtime.GOOS.
func NewClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return newClientFor(runtime.GOOS, opts)
}

func newClientFor(goos string, opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	if initializer, exists := clientInitializers[goos]; exists {
		return initializer(opts)
	}
	return nil, fmt.Errorf("%w: %w: %s", contracts.ErrDeviceUnavailable, ErrUnsupportedOS, goos)
}
