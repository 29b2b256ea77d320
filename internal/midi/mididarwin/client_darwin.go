//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/midibridge/internal/midi/midiwire"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices       = fmt.Errorf("%w: no MIDI sources found", contracts.ErrDeviceUnavailable)
	ErrInvalidMIDIDevice   = fmt.Errorf("%w: invalid MIDI source", contracts.ErrDeviceUnavailable)
	ErrMIDIConnectionError = fmt.Errorf("%w: error connecting to MIDI source", contracts.ErrDeviceUnavailable)
	ErrCreateInputPort     = errors.New("error creating input port")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// ClientMid reads a CoreMIDI source and forwards every complete message to
// the capture channel.
type ClientMid struct {
	logger          contracts.Logger
	eventChannel    atomic.Value               // chan contracts.MIDI, swapped atomically.
	client          coremidi.Client            // CoreMIDI client instance for MIDI operations.
	inputPort       coremidi.InputPort         // Input port for receiving MIDI events.
	portConn        internalPortConnection     // Connection to the MIDI port.
	midiEventFilter *contracts.MIDIEventFilter // Filter for specific MIDI events.
	mu              sync.Mutex                 // Guards connection state.
	parserMu        sync.Mutex                 // Serializes packet parsing.
	parser          midiwire.Parser            // Reassembles messages across packets.
	capturing       bool                       // Indicates if event capturing is currently active.
	wg              sync.WaitGroup             // Tracks in-flight packet callbacks.
	stopOnce        sync.Once                  // Ensures Stop() is executed only once.
}

// NewMIDIClient initializes a new ClientMid for handling MIDI events on macOS.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}
	options.Logger.Info("MIDI client successfully created",
		options.Logger.Field().String("clientName", options.CoreMIDIConfig.ClientName))

	return &ClientMid{
		logger:          options.Logger,
		client:          client,
		midiEventFilter: options.MIDIEventFilter,
	}, nil
}

// ListDevices retrieves and returns available MIDI sources.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		sourceEntity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			ID:           i,
			Name:         source.Name(),
			EntityName:   sourceEntity.Name(),
			Manufacturer: sourceEntity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects to the source with the given index, replacing any previous connection.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
	}
	if deviceID < 0 || deviceID >= len(sources) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}

	source := sources[deviceID]
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))

	m.inputPort, err = coremidi.NewInputPort(m.client, "midibridge input", m.handlePacket)
	if err != nil {
		m.logger.Error(ErrCreateInputPort.Error(), m.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	m.portConn, err = m.inputPort.Connect(source)
	if err != nil {
		m.logger.Error(ErrMIDIConnectionError.Error(), m.logger.Field().Error("error", err))
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}

	m.logger.Info("MIDI device successfully connected")
	return nil
}

// handlePacket splits a CoreMIDI packet into messages and forwards those that pass the filter.
func (m *ClientMid) handlePacket(source coremidi.Source, packet coremidi.Packet) {
	m.wg.Add(1)
	defer m.wg.Done()

	eventChannel, _ := m.eventChannel.Load().(chan contracts.MIDI)
	if eventChannel == nil {
		m.logger.Debug("MIDI packet received before capture started; dropped")
		return
	}

	m.parserMu.Lock()
	messages := m.parser.Feed(packet.Data)
	m.parserMu.Unlock()

	now := uint64(time.Now().UTC().UnixNano())
	for _, msg := range messages {
		if !midiwire.Allowed(m.midiEventFilter, msg[0]) {
			continue
		}
		select {
		case eventChannel <- contracts.MIDI{Timestamp: now, Data: msg}:
		default:
			m.logger.Warn("Event buffer full; dropping MIDI event")
		}
	}
}

// StartCapture stores the event channel; packets received from now on are forwarded to it.
func (m *ClientMid) StartCapture(eventChannel chan contracts.MIDI) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if eventChannel == nil {
		m.logger.Error("StartCapture called with nil eventChannel")
		return
	}

	if m.capturing {
		m.logger.Warn("Capture already started; replacing event channel")
	}

	m.logger.Info("Starting MIDI event capture")
	m.eventChannel.Store(eventChannel)
	m.capturing = true
}

// Stop disconnects from the source and waits for in-flight packets. Safe to call more than once.
func (m *ClientMid) Stop() error {
	m.stopOnce.Do(func() {
		m.logger.Info("Stopping MIDI capture")
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.portConn != nil {
			m.portConn.Disconnect()
			m.portConn = nil
		}

		if m.capturing {
			m.capturing = false
			// An unbuffered channel nobody reads; late packets hit the default branch.
			m.eventChannel.Store(make(chan contracts.MIDI))
		}

		m.wg.Wait()
		m.logger.Info("MIDI capture stopped")
	})
	return nil
}
