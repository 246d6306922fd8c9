package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sceneforge/internal/ipc"
	"sceneforge/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			client, err := ctx.dialClient()
			if err != nil {
				// Daemon offline; read the current log file directly.
				return tailLocalLog(cmd, ctx, lines, follow)
			}
			defer client.Close()

			offset := int64(-1)
			for {
				resp, err := client.LogTail(ipc.LogTailRequest{
					Offset:     offset,
					Limit:      lines,
					Follow:     follow,
					WaitMillis: 1000,
				})
				if err != nil {
					return err
				}
				for _, line := range resp.Lines {
					fmt.Fprintln(stdout, line)
				}
				offset = resp.Offset
				if !follow {
					return nil
				}
				select {
				case <-cmd.Context().Done():
					return nil
				default:
				}
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 40, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new log lines")
	return cmd
}

func tailLocalLog(cmd *cobra.Command, ctx *commandContext, lines int, follow bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "sceneforge.log")
	stdout := cmd.OutOrStdout()

	result, err := logs.Tail(cmd.Context(), logPath, logs.TailOptions{Offset: -1, Limit: lines})
	if err != nil {
		return err
	}
	for _, line := range result.Lines {
		fmt.Fprintln(stdout, line)
	}
	if !follow {
		return nil
	}
	offset := result.Offset
	for {
		result, err := logs.Tail(cmd.Context(), logPath, logs.TailOptions{
			Offset: offset,
			Follow: true,
			Wait:   time.Second,
		})
		if err != nil {
			if cmd.Context().Err() != nil {
				return nil
			}
			return err
		}
		for _, line := range result.Lines {
			fmt.Fprintln(stdout, line)
		}
		offset = result.Offset
	}
}
