package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sceneforge/internal/daemonctl"
	"sceneforge/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the sceneforge daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.EnsureStarted(
				ctx.socketPath(),
				exe,
				daemonLaunchOptions(ctx),
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.Launched {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
			}

			switch result.State {
			case daemonctl.StartStateStarted:
				fmt.Fprintln(stdout, "Daemon started")
			case daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon already running")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Message) != "" {
					fmt.Fprintln(stdout, result.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the sceneforge daemon (completely terminates the process)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			result, err := daemonctl.StopAndTerminate(ctx.socketPath(), ctx.configValue(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if !result.StopAcknowledged {
				fmt.Fprintln(stdout, "Stop request sent")
			} else {
				fmt.Fprintln(stdout, "Stopping shell session and watchers...")
			}
			if result.ForcedKill && result.PID > 0 {
				fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.PID)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the sceneforge daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			result, err := daemonctl.Restart(
				ctx.socketPath(),
				ctx.configValue(),
				exe,
				daemonLaunchOptions(ctx),
				5*time.Second,
				10*time.Second,
			)
			if err != nil {
				return err
			}

			if result.WasRunning {
				if result.Stop.ForcedKill && result.Stop.PID > 0 {
					fmt.Fprintf(stdout, "Stopping daemon process (pid %d)...\n", result.Stop.PID)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			switch result.Start.State {
			case daemonctl.StartStateStarted, daemonctl.StartStateAlreadyRunning:
				fmt.Fprintln(stdout, "Daemon restarted")
			case daemonctl.StartStateRequested:
				if strings.TrimSpace(result.Start.Message) != "" {
					fmt.Fprintln(stdout, result.Start.Message)
					return nil
				}
				fmt.Fprintln(stdout, "Start request sent")
			}
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon, session, and job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			statusResp, err := daemonctl.BuildStatusSnapshot(cmd.Context(), ctx.socketPath(), cfg)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			for _, line := range renderSectionHeader("System Status", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range systemStatusLines(statusResp, cfg != nil && cfg.Notifications.NtfyTopic != "") {
				fmt.Fprintln(stdout, renderStatusLine(line.label, line.kind, line.detail, colorize))
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(stdout, line)
			}
			for _, line := range dependencyLines(statusResp.Dependencies, colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Job History", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows := historySummaryRows(statusResp.History)
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No jobs recorded")
				return nil
			}
			table := renderTable([]string{"State", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
			fmt.Fprintln(stdout, table)
			return nil
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

type statusLine struct {
	label  string
	kind   statusKind
	detail string
}

func systemStatusLines(status *ipc.StatusResponse, notifyConfigured bool) []statusLine {
	lines := make([]statusLine, 0, 6)
	if status.Running {
		lines = append(lines, statusLine{"Sceneforge", statusOK, "Running"})
	} else {
		lines = append(lines, statusLine{"Sceneforge", statusWarn, "Not running (run `sceneforge start`)"})
	}

	if status.ShellRunning {
		lines = append(lines, statusLine{"Shell Session", statusOK, "Active"})
	} else if status.Running {
		lines = append(lines, statusLine{"Shell Session", statusError, "Not running"})
	} else {
		lines = append(lines, statusLine{"Shell Session", statusInfo, "Inactive (daemon not running)"})
	}

	for _, class := range []string{"render", "preview"} {
		label := strings.ToUpper(class[:1]) + class[1:] + " Slot"
		state := status.JobStates[class]
		switch state {
		case "", "idle":
			lines = append(lines, statusLine{label, statusInfo, "Idle"})
		default:
			lines = append(lines, statusLine{label, statusOK, strings.ToUpper(state[:1]) + state[1:]})
		}
	}

	gpuKind := statusInfo
	if status.GPU.Discrete {
		gpuKind = statusOK
	} else if !status.GPU.Available {
		gpuKind = statusWarn
	}
	lines = append(lines, statusLine{"GPU", gpuKind, status.GPU.Description})

	if notifyConfigured {
		lines = append(lines, statusLine{"Notifications", statusOK, "Configured"})
	} else {
		lines = append(lines, statusLine{"Notifications", statusWarn, "Not configured"})
	}
	return lines
}

func dependencyLines(deps []ipc.DependencyStatus, colorize bool) []string {
	lines := make([]string, 0, len(deps)+1)
	missing := make([]string, 0)
	for _, dep := range deps {
		if dep.Available {
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			if dep.Detail != "" {
				message = fmt.Sprintf("%s; %s", message, dep.Detail)
			}
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusKindFromSeverity(dep.Severity)
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
		missing = append(missing, dep.Name)
	}
	if len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, strings.Join(missing, ", "), colorize))
	}
	return lines
}

func historySummaryRows(summary ipc.HistorySummary) [][]string {
	if summary.Total == 0 {
		return nil
	}
	rows := make([][]string, 0, 5)
	add := func(label string, count int) {
		if count > 0 {
			rows = append(rows, []string{label, fmt.Sprintf("%d", count)})
		}
	}
	add("Running", summary.Running)
	add("Succeeded", summary.Succeeded)
	add("Failed", summary.Failed)
	add("Timed Out", summary.TimedOut)
	add("Cancelled", summary.Cancelled)
	rows = append(rows, []string{"Total", fmt.Sprintf("%d", summary.Total)})
	return rows
}

func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func daemonLaunchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.configFlag != nil {
		if config := strings.TrimSpace(*ctx.configFlag); config != "" {
			opts.ConfigPath = config
		}
	}
	return opts
}
