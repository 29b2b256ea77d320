// Package midiwire splits raw MIDI byte streams into complete messages.
//
// Drivers receive bytes in different shapes: CoreMIDI hands over packets that
// may carry several messages, winmm packs a short message into one DWORD and
// ALSA delivers whole messages. Everything is normalised here so the listener
// always sees one message per event.
package midiwire

import "github.com/leandrodaf/midibridge/sdk/contracts"

const (
	sysExStart = 0xF0
	sysExEnd   = 0xF7
)

// MessageLength returns the total length of a message starting with status,
// or 0 for SysEx (variable length) and for data bytes.
func MessageLength(status byte) int {
	switch {
	case status < 0x80:
		return 0
	case status < 0xC0:
		return 3
	case status < 0xE0:
		return 2
	case status < 0xF0:
		return 3
	}
	switch status {
	case sysExStart:
		return 0
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	}
	return 1
}

// IsRealtime reports whether status is a single-byte realtime message that
// may appear between the bytes of any other message.
func IsRealtime(status byte) bool {
	return status >= 0xF8
}

// Parser turns a byte stream into messages. It keeps running status and
// partially received SysEx between calls, so one Parser must be used per source.
type Parser struct {
	running byte
	pending []byte
	sysEx   bool
}

// Feed consumes data and returns the messages completed by it. Returned
// slices do not alias data.
func (p *Parser) Feed(data []byte) [][]byte {
	var out [][]byte
	for _, b := range data {
		if IsRealtime(b) {
			out = append(out, []byte{b})
			continue
		}

		if p.sysEx {
			if b == sysExEnd {
				out = append(out, append(p.pending, b))
				p.reset()
				continue
			}
			if b < 0x80 {
				p.pending = append(p.pending, b)
				continue
			}
			// A status byte aborts an unterminated SysEx.
			out = append(out, p.pending)
			p.reset()
		}

		if b >= 0x80 {
			p.pending = append(p.pending[:0:0], b)
			switch {
			case b == sysExStart:
				p.sysEx = true
				p.running = 0
			case b < 0xF0:
				p.running = b
			default:
				p.running = 0
			}
		} else {
			if len(p.pending) == 0 {
				if p.running == 0 {
					// Stray data byte with no status to attach it to.
					continue
				}
				p.pending = []byte{p.running}
			}
			p.pending = append(p.pending, b)
		}

		if !p.sysEx && len(p.pending) == MessageLength(p.pending[0]) {
			out = append(out, p.pending)
			p.pending = nil
		}
	}
	return out
}

func (p *Parser) reset() {
	p.pending = nil
	p.sysEx = false
}

// ShortMessage unpacks a winmm MIM_DATA parameter (status in the low byte,
// then up to two data bytes) into a message of the length the status implies.
func ShortMessage(packed uint32) []byte {
	status := byte(packed)
	n := MessageLength(status)
	if n == 0 {
		return nil
	}
	msg := []byte{status, byte(packed >> 8), byte(packed >> 16)}
	return msg[:n]
}

// Allowed reports whether a message passes the event filter. A nil filter
// allows everything; channel bits of the status byte are ignored.
func Allowed(filter *contracts.MIDIEventFilter, status byte) bool {
	if filter == nil {
		return true
	}
	command := status
	if status < 0xF0 {
		command = status & 0xF0
	}
	for _, allowed := range filter.Commands {
		if command == byte(allowed) {
			return true
		}
	}
	return false
}
