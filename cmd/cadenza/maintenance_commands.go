package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"cadenza/internal/ipc"
)

func newDiskUsageCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "disk-usage",
		Short: "Report local storage used by the catalog cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.DiskUsage()
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), resp)
				}

				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Database: %s\n", formatBytes(resp.DatabaseBytes))
				fmt.Fprintf(stdout, "Themes:   %s\n", formatBytes(resp.ThemeBytes))
				if len(resp.PerExperience) == 0 {
					return nil
				}

				ids := make([]int64, 0, len(resp.PerExperience))
				for id := range resp.PerExperience {
					ids = append(ids, id)
				}
				sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
				rows := make([][]string, 0, len(ids))
				for _, id := range ids {
					rows = append(rows, []string{
						strconv.FormatInt(id, 10),
						formatBytes(resp.PerExperience[id]),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Experience", "Size"},
					rows,
					0, 1,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit usage as JSON")
	return cmd
}

func newCleanDBCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean-db",
		Short: "Compact the local database, reclaiming unloaded space",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.CleanDB(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Database compacted")
				return nil
			})
		},
	}
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
