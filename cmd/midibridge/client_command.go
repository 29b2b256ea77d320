package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/leandrodaf/midibridge/internal/ipc"
	"github.com/leandrodaf/midibridge/sdk/snapshot"
	"github.com/spf13/cobra"
)

func newClientCommand(ctx *commandContext) *cobra.Command {
	var (
		address string
		timeout time.Duration
		asJSON  bool
		asRaw   bool
	)

	cmd := &cobra.Command{
		Use:   "client",
		Short: "Request one snapshot from a running server and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON && asRaw {
				return errors.New("--json and --raw are mutually exclusive")
			}
			opts := []snapshot.Option{
				snapshot.WithAddress(address),
				snapshot.WithTimeout(timeout),
				snapshot.WithLogger(ctx.logger),
			}
			out := cmd.OutOrStdout()

			if asRaw {
				raw, err := snapshot.RequestRaw(cmd.Context(), opts...)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, hex.EncodeToString(raw))
				return err
			}

			state, err := snapshot.Request(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, state)
			}
			_, err = fmt.Fprintln(out, renderState(state, shouldColorize(out)))
			return err
		},
	}

	cmd.Flags().StringVar(&address, "address", ipc.DefaultAddress(), "Socket path (named pipe on Windows) of the server")
	cmd.Flags().DurationVar(&timeout, "timeout", snapshot.DefaultTimeout, "Maximum time for the request")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	cmd.Flags().BoolVar(&asRaw, "raw", false, "Print the raw snapshot bytes as hex")

	return cmd
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
