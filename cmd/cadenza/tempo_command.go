package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cadenza/internal/ipc"
)

func newTempoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tempo [bpm]",
		Short: "Show the transport position or change the tempo",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if len(args) == 1 {
					bpm, err := strconv.ParseFloat(args[0], 64)
					if err != nil {
						return fmt.Errorf("invalid tempo %q", args[0])
					}
					if err := client.SetTempo(bpm); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Tempo set to %.1f bpm\n", bpm)
					return nil
				}
				resp, err := client.Clock()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "beat %.3f @ %.1f bpm\n", resp.Beat, resp.Tempo)
				return nil
			})
		},
	}
}
