package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/midibridge/internal/bridge"
	"github.com/leandrodaf/midibridge/internal/ipc"
	"github.com/leandrodaf/midibridge/internal/server"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/leandrodaf/midibridge/sdk/midi"
	"github.com/spf13/cobra"
)

func newServerCommand(ctx *commandContext) *cobra.Command {
	var cfg bridge.Config

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Listen to the MIDI surface and serve snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := midi.NewMIDIClient(
				contracts.WithLogger(ctx.logger),
				contracts.WithLogLevel(ctx.level),
			)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return bridge.New(client, cfg, ctx.logger).Run(runCtx)
		},
	}

	cmd.Flags().StringVar(&cfg.Address, "address", ipc.DefaultAddress(), "Socket path (named pipe on Windows) to serve snapshots on")
	cmd.Flags().IntVar(&cfg.DeviceID, "device", 0, "MIDI input index (see 'midibridge devices')")
	cmd.Flags().IntVar(&cfg.EventBuffer, "event-buffer", bridge.DefaultEventBuffer, "Capacity of the MIDI event queue")
	cmd.Flags().DurationVar(&cfg.RequestTimeout, "request-timeout", server.DefaultRequestTimeout, "Maximum time one client may take; negative disables")

	return cmd
}
