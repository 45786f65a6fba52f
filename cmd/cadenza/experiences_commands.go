package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"cadenza/internal/ipc"
)

func newExperiencesCommand(ctx *commandContext) *cobra.Command {
	experiencesCmd := &cobra.Command{
		Use:     "experiences",
		Aliases: []string{"exp"},
		Short:   "Inspect the local experience catalog",
	}

	experiencesCmd.AddCommand(newExperiencesListCommand(ctx))
	experiencesCmd.AddCommand(newExperiencesShowCommand(ctx))
	experiencesCmd.AddCommand(newExperiencesUnloadCommand(ctx))

	return experiencesCmd
}

func newExperiencesListCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached experiences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ExperienceList(refresh)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), resp.Items)
				}

				items := resp.Items
				sortExperiencesByTitle(items)

				stdout := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(stdout, "No experiences cached; run `cadenza sync` first")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Title,
						strconv.FormatInt(item.ArtistID, 10),
						yesNo(item.HasMetadata),
						fmt.Sprintf("%d/%d", item.ThemesDownloaded, item.ThemesTotal),
						strconv.FormatInt(item.PlayCount, 10),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Title", "Artist", "Metadata", "Themes", "Plays"},
					rows,
					0, 2, 4, 5,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Refresh the listing from the mother catalog first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the listing as JSON")
	return cmd
}

func newExperiencesShowCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one cached experience",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid experience id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ExperienceDescribe(id, refresh)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp.Item)
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Re-fetch metadata from the mother catalog first")
	return cmd
}

func newExperiencesUnloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unload <id>",
		Short: "Drop downloaded theme payloads for an experience",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid experience id %q", args[0])
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.Unload(id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unloaded experience %d (run `cadenza clean-db` to reclaim space)\n", id)
				return nil
			})
		},
	}
}

func sortExperiencesByTitle(items []ipc.ExperienceItem) {
	collator := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		if c := collator.CompareString(items[i].Title, items[j].Title); c != 0 {
			return c < 0
		}
		return items[i].ID < items[j].ID
	})
}
