package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrDeviceUnavailable is returned when the MIDI input cannot be found or opened.
	ErrDeviceUnavailable = errors.New("midi device unavailable")
	// ErrConnection is returned when the IPC channel cannot be opened or accepted.
	ErrConnection = errors.New("ipc connection error")
	// ErrSizeMismatch is returned when a snapshot buffer does not have the fixed record size.
	ErrSizeMismatch = errors.New("snapshot size mismatch")
)

// SizeMismatchError reports how many bytes were received against how many were expected.
type SizeMismatchError struct {
	Got  int
	Want int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%s: got %d bytes, want %d", ErrSizeMismatch, e.Got, e.Want)
}

// Is makes errors.Is(err, ErrSizeMismatch) match.
func (e *SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch
}
