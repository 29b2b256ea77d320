//go:build windows

package ipc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/leandrodaf/midibridge/sdk/contracts"
	"golang.org/x/sys/windows"
)

const (
	defaultPipeName = `\\.\pipe\ipc-request`
	pipeBufferSize  = 4096
	dialRetryDelay  = 20 * time.Millisecond
)

// DefaultAddress returns the pipe name used when none is configured.
func DefaultAddress() string {
	return defaultPipeName
}

type pipeListener struct {
	name string

	mu      sync.Mutex
	next    windows.Handle // instance waiting for the next Accept
	pending windows.Handle // instance blocked in ConnectNamedPipe
	closed  bool
}

// Listen creates the named pipe. The first instance is created with
// FILE_FLAG_FIRST_PIPE_INSTANCE so a second server fails here.
func Listen(name string) (Listener, error) {
	h, err := createPipe(name, true)
	if err != nil {
		return nil, fmt.Errorf("%w: create named pipe %s: %v", contracts.ErrConnection, name, err)
	}
	return &pipeListener{name: name, next: h}, nil
}

func createPipe(name string, first bool) (windows.Handle, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return windows.InvalidHandle, err
	}
	flags := uint32(windows.PIPE_ACCESS_DUPLEX)
	if first {
		flags |= windows.FILE_FLAG_FIRST_PIPE_INSTANCE
	}
	return windows.CreateNamedPipe(p,
		flags,
		windows.PIPE_TYPE_BYTE|windows.PIPE_READMODE_BYTE|windows.PIPE_WAIT|windows.PIPE_REJECT_REMOTE_CLIENTS,
		windows.PIPE_UNLIMITED_INSTANCES,
		pipeBufferSize,
		pipeBufferSize,
		0,
		nil)
}

func (l *pipeListener) Accept() (Conn, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrListenerClosed
	}
	h := l.next
	l.next = 0
	if h == 0 {
		var err error
		if h, err = createPipe(l.name, false); err != nil {
			l.mu.Unlock()
			return nil, fmt.Errorf("create named pipe instance: %w", err)
		}
	}
	l.pending = h
	l.mu.Unlock()

	err := windows.ConnectNamedPipe(h, nil)

	l.mu.Lock()
	l.pending = 0
	closed := l.closed
	if !closed && l.next == 0 {
		// Have the next instance ready so clients do not see "file not found"
		// while this connection is being served.
		if next, nerr := createPipe(l.name, false); nerr == nil {
			l.next = next
		}
	}
	l.mu.Unlock()

	if closed {
		_ = windows.CloseHandle(h)
		return nil, ErrListenerClosed
	}
	if err != nil && !errors.Is(err, windows.ERROR_PIPE_CONNECTED) {
		_ = windows.CloseHandle(h)
		return nil, fmt.Errorf("connect named pipe: %w", err)
	}
	return &pipeConn{File: os.NewFile(uintptr(h), l.name), handle: h, server: true}, nil
}

// Close stops accepting. A goroutine blocked in Accept is released by
// connecting to the pending instance.
func (l *pipeListener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	next, pending := l.next, l.pending
	l.next = 0
	l.mu.Unlock()

	if next != 0 {
		_ = windows.CloseHandle(next)
	}
	if pending != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if conn, err := Dial(ctx, l.name); err == nil {
			_ = conn.Close()
		}
	}
	return nil
}

func (l *pipeListener) Addr() string {
	return l.name
}

// pipeConn is a synchronous pipe handle. Deadlines are not supported on
// synchronous handles; SetDeadline reports the os.File error.
type pipeConn struct {
	*os.File
	handle windows.Handle
	server bool
}

func (c *pipeConn) Close() error {
	if c.server {
		// Flush before disconnecting or the client may lose the unread reply.
		_ = windows.FlushFileBuffers(c.handle)
		_ = windows.DisconnectNamedPipe(c.handle)
	}
	return c.File.Close()
}

// Dial opens the named pipe, retrying while all instances are busy or the
// server is between instances, until ctx is done.
func Dial(ctx context.Context, name string) (Conn, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrConnection, err)
	}
	for {
		h, err := windows.CreateFile(p,
			windows.GENERIC_READ|windows.GENERIC_WRITE,
			0,
			nil,
			windows.OPEN_EXISTING,
			0,
			0)
		if err == nil {
			return &pipeConn{File: os.NewFile(uintptr(h), name), handle: h}, nil
		}
		if !errors.Is(err, windows.ERROR_PIPE_BUSY) && !errors.Is(err, windows.ERROR_FILE_NOT_FOUND) {
			return nil, fmt.Errorf("%w: open %s: %v", contracts.ErrConnection, name, err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: open %s: %v", contracts.ErrConnection, name, err)
		case <-time.After(dialRetryDelay):
		}
	}
}
