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

func newArtistsCommand(ctx *commandContext) *cobra.Command {
	var refresh bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "artists",
		Short: "List cached artists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.ArtistList(refresh)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), resp.Items)
				}

				items := resp.Items
				collator := collate.New(language.Und, collate.IgnoreCase)
				sort.SliceStable(items, func(i, j int) bool {
					if c := collator.CompareString(items[i].Name, items[j].Name); c != 0 {
						return c < 0
					}
					return items[i].ID < items[j].ID
				})

				stdout := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(stdout, "No artists cached; run `cadenza sync` first")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						item.Name,
						item.Bio,
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"ID", "Name", "Bio"},
					rows,
					0,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Refresh the listing from the mother catalog first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the listing as JSON")
	return cmd
}
