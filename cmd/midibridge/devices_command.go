package main

import (
	"fmt"
	"strconv"

	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/leandrodaf/midibridge/sdk/midi"
	"github.com/spf13/cobra"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List MIDI inputs usable with 'server --device'",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := midi.NewMIDIClient(
				contracts.WithLogger(ctx.logger),
				contracts.WithLogLevel(ctx.level),
			)
			if err != nil {
				return err
			}
			defer client.Stop()

			devices, err := client.ListDevices()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderDevices(devices))
			return err
		},
	}
}

func renderDevices(devices []contracts.DeviceInfo) string {
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{strconv.Itoa(d.ID), d.Name, d.EntityName, d.Manufacturer})
	}
	return renderTable([]string{"ID", "Name", "Entity", "Manufacturer"}, rows, []columnAlignment{alignRight})
}
