package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cadenza/internal/ipc"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var metadata bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Refresh the local catalog from the mother database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Sync(metadata)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d experiences and %d artists\n",
					resp.Experiences, resp.Artists)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&metadata, "metadata", false, "Also re-fetch metadata for cached experiences")
	return cmd
}
