//go:build !linux || !cgo

package midirtmidi

import (
	"fmt"

	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// NewMIDIClient is only available on Linux builds with cgo enabled.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	return nil, fmt.Errorf("%w: rtmidi requires linux and cgo", contracts.ErrDeviceUnavailable)
}
