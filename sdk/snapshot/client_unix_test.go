//go:build !windows

package snapshot

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/midibridge/internal/ipc"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/leandrodaf/midibridge/sdk/surface"
)

// replyOnce serves a single connection with a canned reply and reports the
// request byte it received.
func replyOnce(t *testing.T, reply []byte) (string, <-chan byte) {
	t.Helper()
	dir, err := os.MkdirTemp("", "mb")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")

	l, err := ipc.Listen(path)
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping socket test: %v", err)
		}
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { l.Close() })

	requests := make(chan byte, 1)
	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var b [1]byte
		if _, err := io.ReadFull(conn, b[:]); err != nil {
			return
		}
		requests <- b[0]
		conn.Write(reply)
	}()
	return path, requests
}

func TestRequestDecodesSnapshot(t *testing.T) {
	var want surface.State
	want.ApplyButton(0x29, true)
	want.ApplyAnalog(0x00, 200)

	path, requests := replyOnce(t, want.Serialize())

	got, err := Request(context.Background(), WithAddress(path))
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if got != want {
		t.Fatalf("got %v, want %v", got.Serialize(), want.Serialize())
	}
	if b := <-requests; b != RequestByte {
		t.Fatalf("request byte = 0x%02X", b)
	}
}

func TestRequestShortReply(t *testing.T) {
	path, _ := replyOnce(t, make([]byte, 20))

	state, err := Request(context.Background(), WithAddress(path))
	if !errors.Is(err, contracts.ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
	if state != (surface.State{}) {
		t.Fatal("state returned for short reply")
	}
}

func TestRequestNoServer(t *testing.T) {
	dir, err := os.MkdirTemp("", "mb")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	defer os.RemoveAll(dir)

	_, err = Request(context.Background(),
		WithAddress(filepath.Join(dir, "none.sock")),
		WithTimeout(200*time.Millisecond))
	if !errors.Is(err, contracts.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
