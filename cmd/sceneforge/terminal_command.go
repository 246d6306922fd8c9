package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sceneforge/internal/ipc"
)

func newTerminalCommand(ctx *commandContext) *cobra.Command {
	terminalCmd := &cobra.Command{
		Use:   "terminal",
		Short: "Interact with the daemon's shell session",
	}

	var follow bool
	readCmd := &cobra.Command{
		Use:   "read",
		Short: "Print pending shell output",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				for {
					resp, err := client.TerminalRead()
					if err != nil {
						return err
					}
					if resp.Output != "" {
						fmt.Fprint(stdout, resp.Output)
					}
					if !follow {
						return nil
					}
					select {
					case <-cmd.Context().Done():
						return nil
					case <-time.After(200 * time.Millisecond):
					}
				}
			})
		},
	}
	readCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep draining output until interrupted")

	var raw bool
	sendCmd := &cobra.Command{
		Use:   "send <input>",
		Short: "Send input to the shell session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data := strings.Join(args, " ")
			if !raw {
				data += "\n"
			}
			return ctx.withClient(func(client *ipc.Client) error {
				_, err := client.TerminalWrite(data)
				return err
			})
		},
	}
	sendCmd.Flags().BoolVar(&raw, "raw", false, "Send input without a trailing newline")

	resizeCmd := &cobra.Command{
		Use:   "resize <cols> <rows>",
		Short: "Resize the shell session terminal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("parse cols: %w", err)
			}
			rows, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("parse rows: %w", err)
			}
			return ctx.withClient(func(client *ipc.Client) error {
				_, err := client.TerminalResize(cols, rows)
				return err
			})
		},
	}

	terminalCmd.AddCommand(readCmd, sendCmd, resizeCmd)
	return terminalCmd
}
