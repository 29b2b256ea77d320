// Package surfacestate owns the single live surface.State of a server process.
package surfacestate

import (
	"sync"

	"github.com/leandrodaf/midibridge/sdk/surface"
)

// Shared guards one surface.State with a reader-writer lock. The device
// listener writes through it and the snapshot server reads through it;
// both receive the same *Shared at construction.
type Shared struct {
	mu    sync.RWMutex
	state surface.State
}

// New returns a Shared holding the zero state.
func New() *Shared {
	return &Shared{}
}

// ApplyButton updates one button under the write lock.
func (s *Shared) ApplyButton(id byte, pressed bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ApplyButton(id, pressed)
}

// ApplyAnalog updates one fader or knob under the write lock.
func (s *Shared) ApplyAnalog(id byte, value byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ApplyAnalog(id, value)
}

// Snapshot returns a copy of the current state.
func (s *Shared) Snapshot() surface.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Serialize encodes the current state while holding the read lock.
func (s *Shared) Serialize() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Serialize()
}
