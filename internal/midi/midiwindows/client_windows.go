//go:build windows
// +build windows

package midiwindows

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/leandrodaf/midibridge/internal/midi/midiwire"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"golang.org/x/sys/windows"
)

// HMIDIIN is a winmm MIDI input handle.
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_LONGDATA  = 0x3C4 // SysEx buffer filled
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

// Struct representing MIDI device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// ClientMid reads a winmm MIDI input device.
type ClientMid struct {
	logger          contracts.Logger
	eventChannel    atomic.Value
	handle          HMIDIIN
	portConn        bool
	started         bool
	mu              sync.Mutex
	callback        uintptr
	instanceID      uintptr
	midiEventFilter *contracts.MIDIEventFilter
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// callback is created once; windows.NewCallback slots are a limited resource.
var midiInCallbackPtr = windows.NewCallback(midiInCallback)

// clients resolves the dwInstance value winmm passes back to the callback.
var clients = newInstanceRegistry[*ClientMid]()

// NewMIDIClient creates a MIDI client for Windows
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	if err := winmm.Load(); err != nil {
		return nil, fmt.Errorf("%w: load winmm.dll: %v", contracts.ErrDeviceUnavailable, err)
	}
	options.Logger.Info("MIDI client created for Windows")

	return &ClientMid{
		logger:          options.Logger,
		midiEventFilter: options.MIDIEventFilter,
		callback:        midiInCallbackPtr,
	}, nil
}

// ListDevices lists the available MIDI input devices
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		m.logger.Warn("No MIDI devices found")
		return nil, fmt.Errorf("%w: no MIDI input devices found", contracts.ErrDeviceUnavailable)
	}

	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiInCaps
		r1, _, _ := procMidiInGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			m.logger.Warn("Failed to get MIDI device capabilities", m.logger.Field().Int("deviceID", int(i)))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			ID:           int(i),
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

// SelectDevice opens a MIDI input device, closing any previously opened one.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.portConn {
		if err := m.stopCapture(); err != nil {
			return fmt.Errorf("failed to stop previous MIDI capture: %w", err)
		}
	}

	fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS
	m.instanceID = clients.add(m)
	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&m.handle)),
		uintptr(deviceID),
		m.callback,
		m.instanceID,
		uintptr(fdwOpen),
	)
	if r1 != 0 {
		clients.remove(m.instanceID)
		m.instanceID = 0
		m.logger.Error("Failed to open MIDI device",
			m.logger.Field().Int("deviceID", deviceID),
			m.logger.Field().Int("mmresult", int(r1)))
		return fmt.Errorf("%w: open device %d: mmresult %d (%v)", contracts.ErrDeviceUnavailable, deviceID, r1, err)
	}

	m.portConn = true
	m.logger.Info("MIDI device connected", m.logger.Field().Int("deviceID", deviceID))
	return nil
}

// StartCapture starts the device and forwards incoming messages to eventChannel.
func (m *ClientMid) StartCapture(eventChannel chan contracts.MIDI) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.portConn || m.handle == 0 {
		m.logger.Error("Cannot start capture: No MIDI device selected")
		return
	}

	m.eventChannel.Store(eventChannel)
	if m.started {
		m.logger.Warn("Capture already started; replacing event channel")
		return
	}

	r1, _, err := procMidiInStart.Call(uintptr(m.handle))
	if r1 != 0 {
		m.logger.Error("Failed to start MIDI capture",
			m.logger.Field().Int("mmresult", int(r1)),
			m.logger.Field().Error("error", err))
		return
	}

	m.started = true
	m.logger.Info("MIDI capture started")
}

// midiInCallback processes incoming MIDI messages
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	m, ok := clients.lookup(dwInstance)
	if !ok {
		return 0
	}

	switch wMsg {
	case MIM_OPEN:
		m.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		m.logger.Debug("MIDI device closed")
	case MIM_DATA, MIM_MOREDATA:
		msg := midiwire.ShortMessage(uint32(dwParam1))
		if msg == nil {
			return 0
		}
		if !midiwire.Allowed(m.midiEventFilter, msg[0]) {
			return 0
		}

		event := contracts.MIDI{
			Timestamp: uint64(time.Now().UTC().UnixNano()),
			Data:      msg,
		}
		if ch, ok := m.eventChannel.Load().(chan contracts.MIDI); ok && ch != nil {
			select {
			case ch <- event:
			default:
				m.logger.Warn("MIDI event channel is full; event discarded")
			}
		}
	case MIM_LONGDATA:
		m.logger.Debug("SysEx data received; no input buffers are registered, ignored")
	case MIM_ERROR, MIM_LONGERROR:
		m.logger.Warn("Invalid MIDI message received",
			m.logger.Field().Uint64("param", uint64(dwParam1)))
	default:
		m.logger.Debug("Unknown winmm MIDI message", m.logger.Field().Int("msg", int(wMsg)))
	}

	return 0
}

// Stop terminates MIDI event capture and closes the device
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.portConn {
		return nil
	}

	if err := m.stopCapture(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	m.logger.Info("MIDI capture stopped and device closed")
	return nil
}

// stopCapture stops the capture and releases the handle. Callers hold m.mu.
func (m *ClientMid) stopCapture() error {
	if m.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}

	if r1, _, err := procMidiInStop.Call(uintptr(m.handle)); r1 != 0 {
		m.logger.Error("Failed to stop MIDI capture", m.logger.Field().Int("mmresult", int(r1)))
		return fmt.Errorf("midiInStop: mmresult %d (%v)", r1, err)
	}

	if r1, _, err := procMidiInClose.Call(uintptr(m.handle)); r1 != 0 {
		m.logger.Error("Failed to close MIDI device", m.logger.Field().Int("mmresult", int(r1)))
		return fmt.Errorf("midiInClose: mmresult %d (%v)", r1, err)
	}

	m.portConn = false
	m.started = false
	m.handle = 0
	clients.remove(m.instanceID)
	m.instanceID = 0
	m.eventChannel.Store(make(chan contracts.MIDI))
	return nil
}
