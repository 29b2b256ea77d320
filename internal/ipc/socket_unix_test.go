//go:build !windows

package ipc

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// socketPath returns a short path; Unix socket paths are limited to ~104 bytes.
func socketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "mb")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func listenOrSkip(t *testing.T, path string) Listener {
	t.Helper()
	l, err := Listen(path)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping socket test: %v", err)
		}
		t.Fatalf("Listen: %v", err)
	}
	return l
}

func TestListenDialRoundTrip(t *testing.T) {
	path := socketPath(t)
	l := listenOrSkip(t, path)
	defer l.Close()

	if l.Addr() != path {
		t.Fatalf("Addr = %q, want %q", l.Addr(), path)
	}

	errc := make(chan error, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			errc <- err
			return
		}
		defer conn.Close()
		buf := make([]byte, 4)
		if _, err := io.ReadFull(conn, buf); err != nil {
			errc <- err
			return
		}
		_, err = conn.Write(buf)
		errc <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, err := Dial(ctx, path)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("ping")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	reply := make([]byte, 4)
	if _, err := io.ReadFull(conn, reply); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(reply) != "ping" {
		t.Fatalf("reply = %q", reply)
	}
	if err := <-errc; err != nil {
		t.Fatalf("server side: %v", err)
	}
}

func TestListenRejectsSecondServer(t *testing.T) {
	path := socketPath(t)
	l := listenOrSkip(t, path)
	defer l.Close()

	_, err := Listen(path)
	if !errors.Is(err, contracts.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatalf("live socket was removed: %v", statErr)
	}
}

func TestListenReplacesStaleSocket(t *testing.T) {
	path := socketPath(t)
	if err := os.WriteFile(path, []byte("stale"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	l := listenOrSkip(t, path)
	l.Close()
}

func TestAcceptAfterClose(t *testing.T) {
	path := socketPath(t)
	l := listenOrSkip(t, path)

	done := make(chan error, 1)
	go func() {
		_, err := l.Accept()
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case err := <-done:
		if !errors.Is(err, ErrListenerClosed) {
			t.Fatalf("expected ErrListenerClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Accept did not return after Close")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("socket not removed: %v", err)
	}

	// The address is free again.
	l2 := listenOrSkip(t, path)
	l2.Close()
}

func TestDialMissingSocket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := Dial(ctx, filepath.Join(t.TempDir(), "missing.sock"))
	if !errors.Is(err, contracts.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
