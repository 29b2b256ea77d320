package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leandrodaf/midibridge/internal/logger"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

type fakeMIDI struct {
	mu       sync.Mutex
	devices  []contracts.DeviceInfo
	listErr  error
	selected int
	events   chan contracts.MIDI
	started  chan struct{}
	stopped  bool
}

func newFakeMIDI(names ...string) *fakeMIDI {
	f := &fakeMIDI{selected: -1, started: make(chan struct{})}
	for i, name := range names {
		f.devices = append(f.devices, contracts.DeviceInfo{ID: i, Name: name})
	}
	return f
}

func (f *fakeMIDI) ListDevices() ([]contracts.DeviceInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.devices, nil
}

func (f *fakeMIDI) SelectDevice(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = id
	return nil
}

func (f *fakeMIDI) StartCapture(ch chan contracts.MIDI) {
	f.mu.Lock()
	f.events = ch
	f.mu.Unlock()
	close(f.started)
}

func (f *fakeMIDI) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeMIDI) send(data ...byte) {
	f.mu.Lock()
	ch := f.events
	f.mu.Unlock()
	ch <- contracts.MIDI{Data: data}
}

func TestRunFailsWithoutDevices(t *testing.T) {
	client := newFakeMIDI()
	client.listErr = errors.New("no MIDI sources")

	b := New(client, Config{Address: "unused"}, logger.NewNopLogger())
	err := b.Run(context.Background())
	if !errors.Is(err, contracts.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestRunFailsForMissingDeviceIndex(t *testing.T) {
	client := newFakeMIDI("nanoKONTROL2")

	b := New(client, Config{Address: "unused", DeviceID: 3}, logger.NewNopLogger())
	err := b.Run(context.Background())
	if !errors.Is(err, contracts.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
	if client.selected != -1 {
		t.Fatal("device selected despite invalid index")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	b := New(newFakeMIDI(), Config{}, logger.NewNopLogger())
	if b.cfg.Address == "" || b.cfg.EventBuffer != DefaultEventBuffer {
		t.Fatalf("defaults not applied: %+v", b.cfg)
	}
}
