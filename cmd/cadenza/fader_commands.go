package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cadenza/internal/ipc"
)

func newFaderCommand(ctx *commandContext) *cobra.Command {
	faderCmd := &cobra.Command{
		Use:   "fader",
		Short: "Control the per-track user faders",
	}

	faderCmd.AddCommand(newFaderRampCommand(ctx))
	faderCmd.AddCommand(newFaderValueCommand(ctx))

	return faderCmd
}

func newFaderRampCommand(ctx *commandContext) *cobra.Command {
	var beats float64

	cmd := &cobra.Command{
		Use:   "ramp <track> <target>",
		Short: "Ramp a fader to a target value over beats",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid track %q", args[0])
			}
			target, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid target %q", args[1])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.FaderRamp(track, target, beats); err != nil {
					return err
				}
				if beats <= 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Set fader %d to %.3f\n", track, target)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Ramping fader %d to %.3f over %.2f beats\n", track, target, beats)
				}
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&beats, "beats", 0, "Ramp duration in beats (0 sets immediately)")
	return cmd
}

func newFaderValueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "value <track>",
		Short: "Read the current value of a fader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid track %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.FaderValue(track)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.6f\n", resp.Value)
				return nil
			})
		},
	}
}
