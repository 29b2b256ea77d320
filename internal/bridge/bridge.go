// Package bridge wires a MIDI input, the shared surface state and the
// snapshot server into the long-running server mode.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/midibridge/internal/ipc"
	"github.com/leandrodaf/midibridge/internal/listener"
	"github.com/leandrodaf/midibridge/internal/server"
	"github.com/leandrodaf/midibridge/internal/surfacestate"
	"github.com/leandrodaf/midibridge/sdk/contracts"
)

// DefaultEventBuffer is the capacity of the channel between driver and listener.
const DefaultEventBuffer = 256

// Config holds server-mode settings. Zero values select defaults.
type Config struct {
	Address        string        // IPC address; ipc.DefaultAddress() when empty.
	DeviceID       int           // MIDI input index.
	EventBuffer    int           // Driver to listener channel capacity.
	RequestTimeout time.Duration // Passed to server.Options.
}

// Bridge runs the device listener and the snapshot server over one shared state.
type Bridge struct {
	client contracts.ClientMIDI
	cfg    Config
	logger contracts.Logger
}

// New returns a Bridge reading MIDI from client.
func New(client contracts.ClientMIDI, cfg Config, logger contracts.Logger) *Bridge {
	if cfg.Address == "" {
		cfg.Address = ipc.DefaultAddress()
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = DefaultEventBuffer
	}
	return &Bridge{client: client, cfg: cfg, logger: logger}
}

// Run opens the device and the IPC endpoint, then serves until ctx is
// cancelled. Startup failures are returned as contracts.ErrDeviceUnavailable
// or contracts.ErrConnection; after startup only cancellation ends Run.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.openDevice(); err != nil {
		return err
	}
	defer func() {
		if err := b.client.Stop(); err != nil {
			b.logger.Warn("failed to stop MIDI client", b.logger.Field().Error("error", err))
		}
	}()

	ipcListener, err := ipc.Listen(b.cfg.Address)
	if err != nil {
		return err
	}

	state := surfacestate.New()
	devices := listener.New(state, b.logger)
	srv := server.New(ipcListener, state, b.logger, server.Options{RequestTimeout: b.cfg.RequestTimeout})

	events := make(chan contracts.MIDI, b.cfg.EventBuffer)
	b.client.StartCapture(events)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		devices.Run(runCtx, events)
	}()

	b.logger.Info("midibridge server running",
		b.logger.Field().String("address", b.cfg.Address),
		b.logger.Field().Int("deviceID", b.cfg.DeviceID))

	err = srv.Serve(runCtx)
	cancel()
	wg.Wait()
	return err
}

func (b *Bridge) openDevice() error {
	devices, err := b.client.ListDevices()
	if err != nil {
		return deviceError(err)
	}
	if b.cfg.DeviceID < 0 || b.cfg.DeviceID >= len(devices) {
		return fmt.Errorf("%w: device %d not found (%d available)", contracts.ErrDeviceUnavailable, b.cfg.DeviceID, len(devices))
	}
	if err := b.client.SelectDevice(b.cfg.DeviceID); err != nil {
		return deviceError(err)
	}
	b.logger.Info("MIDI input opened",
		b.logger.Field().Int("deviceID", b.cfg.DeviceID),
		b.logger.Field().String("deviceName", devices[b.cfg.DeviceID].Name))
	return nil
}

func deviceError(err error) error {
	if errors.Is(err, contracts.ErrDeviceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", contracts.ErrDeviceUnavailable, err)
}
