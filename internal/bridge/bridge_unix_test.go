//go:build !windows

package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leandrodaf/midibridge/internal/logger"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/leandrodaf/midibridge/sdk/snapshot"
	"github.com/leandrodaf/midibridge/sdk/surface"
)

type runningBridge struct {
	client *fakeMIDI
	path   string
	stop   func()
}

func startBridge(t *testing.T) *runningBridge {
	t.Helper()
	dir, err := os.MkdirTemp("", "mb")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "s.sock")

	client := newFakeMIDI("nanoKONTROL2 SLIDER/KNOB")
	b := New(client, Config{Address: path}, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case <-client.started:
	case err := <-done:
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("capture never started")
	}

	return &runningBridge{client: client, path: path, stop: func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Run did not stop")
		}
	}}
}

// waitFor polls the server until check passes; events reach the state asynchronously.
func waitFor(t *testing.T, path string, check func(surface.State) bool) surface.State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		state, err := snapshot.Request(context.Background(), snapshot.WithAddress(path))
		if err != nil {
			t.Fatalf("Request: %v", err)
		}
		if check(state) {
			return state
		}
		if time.Now().After(deadline) {
			t.Fatalf("state never matched, last: %v", state.Serialize())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEndToEndPlayPressed(t *testing.T) {
	rb := startBridge(t)
	defer rb.stop()

	rb.client.send(144, 0x29, 127)

	state := waitFor(t, rb.path, func(s surface.State) bool { return s.Pressed(surface.Play) })
	if len(state.Serialize()) != surface.Size {
		t.Fatalf("serialized length = %d", len(state.Serialize()))
	}
	for _, c := range surface.Controls() {
		if c != surface.Play && state.Value(c) != 0 {
			t.Fatalf("%s = %d, want 0", c, state.Value(c))
		}
	}
}

func TestEndToEndFaderLastWriteWins(t *testing.T) {
	rb := startBridge(t)
	defer rb.stop()

	rb.client.send(176, 0x00, 64)
	rb.client.send(176, 0x00, 200)
	// A marker after both fader events: once it is visible, both were applied.
	rb.client.send(144, 0x3C, 127)

	state := waitFor(t, rb.path, func(s surface.State) bool { return s.Pressed(surface.MarkerSet) })
	if got := state.Value(surface.Fader0); got != 200 {
		t.Fatalf("Fader0 = %d, want 200", got)
	}
}

func TestEndToEndUnrecognizedEventsIgnored(t *testing.T) {
	rb := startBridge(t)
	defer rb.stop()

	rb.client.send(0xF0, 0x42, 0x40, 0xF7)
	rb.client.send(144, 0x29, 100)
	rb.client.send(144, 0xFF, 127)
	rb.client.send(144, 0x2A, 127)

	state := waitFor(t, rb.path, func(s surface.State) bool { return s.Pressed(surface.Stop) })
	if state.Pressed(surface.Play) {
		t.Fatal("Play set by an unrecognized event")
	}
}

func TestRunStopsClientOnCancel(t *testing.T) {
	rb := startBridge(t)
	rb.stop()

	rb.client.mu.Lock()
	defer rb.client.mu.Unlock()
	if !rb.client.stopped {
		t.Fatal("MIDI client not stopped")
	}
	if _, err := os.Stat(rb.path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("socket left behind: %v", err)
	}
}

func TestRunFailsWhenAddressTaken(t *testing.T) {
	rb := startBridge(t)
	defer rb.stop()

	second := New(newFakeMIDI("other"), Config{Address: rb.path}, logger.NewNopLogger())
	err := second.Run(context.Background())
	if !errors.Is(err, contracts.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
