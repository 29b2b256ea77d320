//go:build !windows

package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// DefaultAddress returns the socket path used when none is configured.
func DefaultAddress() string {
	return filepath.Join(os.TempDir(), "midibridge.sock")
}

type socketListener struct {
	path     string
	listener net.Listener
	lock     *flock.Flock

	closeOnce sync.Once
	closeErr  error
}

// Listen creates a Unix domain socket at path. A lock file next to the socket
// keeps a second server from removing a live socket.
func Listen(path string) (Listener, error) {
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock: %v", contracts.ErrConnection, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: another server already owns %s", contracts.ErrConnection, path)
	}

	if err := os.RemoveAll(path); err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: remove existing socket: %v", contracts.ErrConnection, err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("%w: listen on socket: %v", contracts.ErrConnection, err)
	}

	return &socketListener{path: path, listener: listener, lock: lock}, nil
}

func (l *socketListener) Accept() (Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, ErrListenerClosed
		}
		return nil, err
	}
	return conn, nil
}

// Close stops the listener, removes the socket file and releases the lock.
func (l *socketListener) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.listener.Close()
		if err := os.RemoveAll(l.path); err != nil && l.closeErr == nil {
			l.closeErr = err
		}
		if err := l.lock.Unlock(); err != nil && l.closeErr == nil {
			l.closeErr = err
		}
	})
	return l.closeErr
}

func (l *socketListener) Addr() string {
	return l.path
}

// Dial connects to the socket at path.
func Dial(ctx context.Context, path string) (Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrConnection, err)
	}
	return conn, nil
}
