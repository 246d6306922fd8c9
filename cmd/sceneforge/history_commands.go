package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sceneforge/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Job history utilities",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.HistoryList(limit)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if len(resp.Records) == 0 {
					fmt.Fprintln(stdout, "No jobs recorded")
					return nil
				}
				rows := make([][]string, 0, len(resp.Records))
				for _, rec := range resp.Records {
					rows = append(rows, []string{
						shortJobID(rec.JobID),
						rec.Class,
						rec.SceneName,
						rec.Quality,
						rec.State,
						historyDetail(rec),
					})
				}
				table := renderTable(
					[]string{"Job", "Class", "Scene", "Quality", "State", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(stdout, table)
				return nil
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all job history records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.HistoryClear()
				if err != nil {
					return err
				}
				if resp.Cleared {
					fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
				}
				return nil
			})
		},
	}

	historyCmd.AddCommand(listCmd, clearCmd)
	return historyCmd
}

func shortJobID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func historyDetail(rec ipc.HistoryRecord) string {
	switch rec.State {
	case "succeeded":
		return rec.ArtifactPath
	case "failed", "timed_out", "cancelled":
		detail := strings.TrimSpace(rec.ErrorMessage)
		if len(detail) > 60 {
			detail = detail[:60] + "..."
		}
		return detail
	default:
		return ""
	}
}
