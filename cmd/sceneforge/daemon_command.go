package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sceneforge/internal/daemonrun"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Daemon process management",
	}

	var logLevel string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}
	runCmd.Flags().StringVar(&logLevel, "log-level", "", "Override configured log level")

	daemonCmd.AddCommand(runCmd)
	return daemonCmd
}
