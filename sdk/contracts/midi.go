package contracts

// MIDI is one complete MIDI message as delivered by a driver.
type MIDI struct {
	Timestamp uint64 // Timestamp indicates the time the event occurred (Unix nanoseconds).
	Data      []byte // Data holds the raw message bytes, status byte first.
}

// Status returns the status byte of the message, or 0 for an empty message.
func (m MIDI) Status() byte {
	if len(m.Data) == 0 {
		return 0
	}
	return m.Data[0]
}

// ClientMIDI defines an interface for MIDI client operations.
type ClientMIDI interface {
	Stop() error                         // Stops the MIDI client and releases resources.
	ListDevices() ([]DeviceInfo, error)  // Lists all available MIDI devices.
	SelectDevice(deviceID int) error     // Selects a MIDI device by its ID for communication.
	StartCapture(eventChannel chan MIDI) // Starts capturing MIDI events and sends them to the specified channel.
}
