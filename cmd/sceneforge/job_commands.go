package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sceneforge/internal/config"
	"sceneforge/internal/ipc"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts jobFlags
	cmd := &cobra.Command{
		Use:   "render <scene-file>",
		Short: "Render a scene file at full quality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := loadJobRequest(args[0], opts)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Render(job)
				if err != nil {
					return err
				}
				printJobAccepted(cmd, resp.Job)
				return nil
			})
		},
	}
	opts.register(cmd)
	return cmd
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var opts jobFlags
	cmd := &cobra.Command{
		Use:   "preview <scene-file>",
		Short: "Render a fast preview of a scene file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := loadJobRequest(args[0], opts)
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Preview(job)
				if err != nil {
					return err
				}
				printJobAccepted(cmd, resp.Job)
				return nil
			})
		},
	}
	opts.register(cmd)
	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the active render or preview job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Cancel()
				if err != nil {
					return err
				}
				if resp.WasActive {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancel requested; active job is being stopped")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "No active job")
				}
				return nil
			})
		},
	}
}

type jobFlags struct {
	quality    string
	frameRate  int
	format     string
	accelerate bool
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.quality, "quality", "q", "", "Render quality (480p, 720p, 1080p, 1440p, 2160p, or WIDTHxHEIGHT)")
	cmd.Flags().IntVar(&f.frameRate, "fps", 0, "Frame rate override")
	cmd.Flags().StringVar(&f.format, "format", "", "Output format (mp4, mov, webm, gif, png)")
	cmd.Flags().BoolVar(&f.accelerate, "accelerate", false, "Use the GPU-accelerated renderer backend")
}

func loadJobRequest(path string, opts jobFlags) (ipc.JobRequest, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return ipc.JobRequest{}, err
	}
	source, err := os.ReadFile(expanded)
	if err != nil {
		return ipc.JobRequest{}, fmt.Errorf("read scene file: %w", err)
	}
	return ipc.JobRequest{
		Source:     string(source),
		Quality:    opts.quality,
		FrameRate:  opts.frameRate,
		Format:     opts.format,
		Accelerate: opts.accelerate,
	}, nil
}

func printJobAccepted(cmd *cobra.Command, job ipc.JobResponse) {
	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "Dispatched %s job %s\n", job.Class, job.JobID)
	fmt.Fprintf(stdout, "  Scene:   %s\n", job.EntryPoint)
	fmt.Fprintf(stdout, "  Command: %s\n", job.Command)
}
