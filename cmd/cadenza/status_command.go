package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cadenza/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show engine status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if asJSON {
					return printJSON(stdout, status)
				}

				color := colorEnabled(stdout)

				for _, line := range sectionHeader("Engine", color) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, statusLine("Running", toneOK, fmt.Sprintf("pid %d", status.PID), color))
				fmt.Fprintln(stdout, statusLine("Session", toneInfo, status.SessionID, color))
				if status.UserID != "" {
					fmt.Fprintln(stdout, statusLine("User", toneOK, status.UserID, color))
				} else {
					fmt.Fprintln(stdout, statusLine("User", toneWarn, "not logged in", color))
				}
				fmt.Fprintln(stdout, statusLine("Database", toneInfo, status.DatabasePath, color))

				fmt.Fprintln(stdout)
				for _, line := range sectionHeader("Transport", color) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, statusLine("Beat", toneInfo, fmt.Sprintf("%.3f", status.Beat), color))
				fmt.Fprintln(stdout, statusLine("Tempo", toneInfo, fmt.Sprintf("%.1f bpm", status.Tempo), color))
				fmt.Fprintln(stdout, statusLine("Sample rate", toneInfo, fmt.Sprintf("%d Hz", status.SampleRate), color))

				dropTone := toneOK
				if status.DroppedNotifications > 0 {
					dropTone = toneWarn
				}
				fmt.Fprintln(stdout, statusLine("Dropped msgs", dropTone,
					fmt.Sprintf("%d", status.DroppedNotifications), color))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit status as JSON")
	return cmd
}
