package main

import (
	"fmt"

	"github.com/leandrodaf/midibridge/internal/logger"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/spf13/cobra"
)

// commandContext carries the persistent flags and the logger built from them.
type commandContext struct {
	logLevelFlag string
	logFileFlag  string

	level  contracts.LogLevel
	logger contracts.Logger
}

func (c *commandContext) setup() error {
	level, ok := contracts.ParseLogLevel(c.logLevelFlag)
	if !ok {
		return fmt.Errorf("invalid --log-level %q (use debug, info, warn or error)", c.logLevelFlag)
	}
	c.level = level
	if c.logger == nil {
		c.logger = logger.NewZapLogger()
	}
	c.logger.SetLevel(level)
	if c.logFileFlag != "" {
		c.logger.SetDestination(contracts.FileLog, c.logFileFlag)
	}
	return nil
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&commandContext{})
}

func newRootCommandWith(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "midibridge",
		Short:         "Serve a MIDI control surface's state to local processes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&ctx.logFileFlag, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(newServerCommand(ctx))
	rootCmd.AddCommand(newClientCommand(ctx))
	rootCmd.AddCommand(newDevicesCommand(ctx))

	return rootCmd
}
