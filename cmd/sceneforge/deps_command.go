package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sceneforge/internal/daemonctl"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			for _, line := range dependencyLines(daemonctl.ResolveDependencies(cfg), colorize) {
				fmt.Fprintln(stdout, line)
			}
			return nil
		},
	}
}
