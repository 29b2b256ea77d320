package ipc

import (
	"errors"
	"io"
	"time"
)

// ErrListenerClosed is returned by Accept after Close.
var ErrListenerClosed = errors.New("ipc listener closed")

// Conn is one accepted or dialed connection.
type Conn interface {
	io.ReadWriteCloser
	// SetDeadline bounds pending and future I/O. Transports that cannot
	// enforce deadlines return an error and block instead.
	SetDeadline(t time.Time) error
}

// Listener accepts connections on a local address.
type Listener interface {
	// Accept blocks until a client connects.
	Accept() (Conn, error)
	// Close stops accepting and releases the address.
	Close() error
	// Addr returns the address passed to Listen.
	Addr() string
}
