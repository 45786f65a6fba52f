package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cadenza/internal/logs"
)

func newListenCommand(ctx *commandContext) *cobra.Command {
	var fromStart bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Stream engine notifications from the NDJSON sink",
		Long: "Tails the notify file cadenzad appends request terminals and stream\n" +
			"ticks to. Requires paths.notify_socket_path to be configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil || cfg.Paths.NotifySocketPath == "" {
				return errors.New("paths.notify_socket_path is not configured")
			}
			path := cfg.Paths.NotifySocketPath
			stdout := cmd.OutOrStdout()

			var offset int64 = -1
			if fromStart {
				offset = 0
			}

			// Prime with existing lines, then follow.
			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: offset, Limit: 20})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(stdout, line)
			}

			offset = result.Offset
			for {
				result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   time.Second,
				})
				if err != nil {
					if errors.Is(err, cmd.Context().Err()) {
						return nil
					}
					return err
				}
				for _, line := range result.Lines {
					fmt.Fprintln(stdout, line)
				}
				offset = result.Offset
				select {
				case <-cmd.Context().Done():
					return nil
				default:
				}
			}
		},
	}

	cmd.Flags().BoolVar(&fromStart, "from-start", false, "Replay the whole notify file before following")
	return cmd
}
