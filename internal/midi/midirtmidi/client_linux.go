//go:build linux && cgo

package midirtmidi

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/midibridge/internal/midi/midiwire"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// ClientMid reads an ALSA sequencer input through rtmidi.
type ClientMid struct {
	logger          contracts.Logger
	driver          *rtmididrv.Driver
	eventChannel    atomic.Value // chan contracts.MIDI
	midiEventFilter *contracts.MIDIEventFilter

	mu     sync.Mutex
	in     drivers.In
	stopFn func()
	closed bool
}

// NewMIDIClient opens the rtmidi driver.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: open rtmidi driver: %v", contracts.ErrDeviceUnavailable, err)
	}
	options.Logger.Info("MIDI client created for Linux (ALSA via rtmidi)")

	return &ClientMid{
		logger:          options.Logger,
		driver:          drv,
		midiEventFilter: options.MIDIEventFilter,
	}, nil
}

// ListDevices lists the ALSA input ports.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	ins, err := m.driver.Ins()
	if err != nil {
		return nil, fmt.Errorf("%w: list MIDI inputs: %v", contracts.ErrDeviceUnavailable, err)
	}
	if len(ins) == 0 {
		m.logger.Warn("No MIDI devices found")
		return nil, fmt.Errorf("%w: no MIDI input ports found", contracts.ErrDeviceUnavailable)
	}

	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{
			ID:         i,
			Name:       in.String(),
			EntityName: in.String(),
		}
	}
	return devices, nil
}

// SelectDevice opens the input port with the given index and starts listening on it.
// Messages are dropped until StartCapture provides a channel.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ins, err := m.driver.Ins()
	if err != nil {
		return fmt.Errorf("%w: list MIDI inputs: %v", contracts.ErrDeviceUnavailable, err)
	}
	if deviceID < 0 || deviceID >= len(ins) {
		m.logger.Error("Invalid MIDI device", m.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: invalid MIDI input %d", contracts.ErrDeviceUnavailable, deviceID)
	}

	m.closePort()

	in := ins[deviceID]
	if !in.IsOpen() {
		if err := in.Open(); err != nil {
			return fmt.Errorf("%w: open %q: %v", contracts.ErrDeviceUnavailable, in.String(), err)
		}
	}

	stop, err := midi.ListenTo(in, m.handleMessage, midi.UseSysEx())
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("%w: listen on %q: %v", contracts.ErrDeviceUnavailable, in.String(), err)
	}

	m.in = in
	m.stopFn = stop
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", in.String()))
	return nil
}

func (m *ClientMid) handleMessage(msg midi.Message, _ int32) {
	if len(msg) == 0 || !midiwire.Allowed(m.midiEventFilter, msg[0]) {
		return
	}
	eventChannel, _ := m.eventChannel.Load().(chan contracts.MIDI)
	if eventChannel == nil {
		return
	}

	data := make([]byte, len(msg))
	copy(data, msg)
	select {
	case eventChannel <- contracts.MIDI{Timestamp: uint64(time.Now().UTC().UnixNano()), Data: data}:
	default:
		m.logger.Warn("MIDI event channel is full; event discarded")
	}
}

// StartCapture forwards messages from the selected port to eventChannel.
func (m *ClientMid) StartCapture(eventChannel chan contracts.MIDI) {
	if eventChannel == nil {
		m.logger.Error("StartCapture called with nil eventChannel")
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.in == nil {
		m.logger.Error("Cannot start capture: No MIDI device selected")
		return
	}
	m.eventChannel.Store(eventChannel)
	m.logger.Info("MIDI capture started")
}

// Stop closes the port and the driver. Safe to call more than once.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.closePort()
	if err := m.driver.Close(); err != nil {
		return fmt.Errorf("close rtmidi driver: %w", err)
	}
	m.logger.Info("MIDI capture stopped and device closed")
	return nil
}

// closePort releases the current port. Callers hold m.mu.
func (m *ClientMid) closePort() {
	if m.stopFn != nil {
		m.stopFn()
		m.stopFn = nil
	}
	if m.in != nil {
		if err := m.in.Close(); err != nil {
			m.logger.Warn("Failed to close MIDI port", m.logger.Field().Error("error", err))
		}
		m.in = nil
	}
}
