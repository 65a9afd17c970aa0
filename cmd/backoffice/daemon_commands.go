package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"backoffice/internal/daemonctl"
	"backoffice/internal/daemonrun"
)

const stopGracePeriod = 10 * time.Second

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run backofficed in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{LogLevel: logLevel})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			health, probeErr := daemonctl.Probe(cmd.Context(), nil, cfg.Paths.APIBind)
			if probeErr != nil && !errors.Is(probeErr, daemonctl.ErrDaemonNotRunning) {
				return probeErr
			}
			running := probeErr == nil
			if asJSON {
				return writeJSON(cmd, map[string]any{"running": running, "health": health})
			}
			rows := [][]string{
				{"Running", yesNo(running)},
				{"Address", cfg.Paths.APIBind},
				{"Database", cfg.Database.Path},
			}
			if running {
				rows = append(rows,
					[]string{"Health", health.Status},
					[]string{"Database check", health.Database},
					[]string{"Started", health.StartedAt},
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			result, err := daemonctl.Stop(cfg, daemonrun.PIDPath(cfg), stopGracePeriod)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(out, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			if result.ForcedKill {
				fmt.Fprintf(out, "Daemon (pid %d) did not exit in time and was killed\n", result.PID)
				return nil
			}
			fmt.Fprintf(out, "Daemon (pid %d) stopped\n", result.PID)
			return nil
		},
	}
}
