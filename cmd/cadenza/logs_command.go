package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cadenza/internal/ipc"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent engine log lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()

				resp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: lines})
				if err != nil {
					return err
				}
				for _, line := range resp.Lines {
					fmt.Fprintln(stdout, line)
				}
				if !follow {
					return nil
				}

				offset := resp.Offset
				for {
					resp, err := client.LogTail(ipc.LogTailRequest{
						Offset:     offset,
						Follow:     true,
						WaitMillis: 1000,
					})
					if err != nil {
						return err
					}
					for _, line := range resp.Lines {
						fmt.Fprintln(stdout, line)
					}
					offset = resp.Offset
					select {
					case <-cmd.Context().Done():
						return nil
					default:
					}
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new log lines")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	return cmd
}
