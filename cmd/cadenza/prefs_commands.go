package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"cadenza/internal/ipc"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Read and write user preferences",
	}

	prefsCmd.AddCommand(newPrefsGetCommand(ctx))
	prefsCmd.AddCommand(newPrefsSetCommand(ctx))
	prefsCmd.AddCommand(newPrefsClearCommand(ctx))
	prefsCmd.AddCommand(newPrefsSyncCommand(ctx))

	return prefsCmd
}

func newPrefsGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key-path>",
		Short: "Read one preference value by dotted key path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PrefGet(args[0])
				if err != nil {
					return err
				}
				if !resp.Found {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not set\n", args[0])
					return nil
				}
				return printJSON(cmd.OutOrStdout(), resp.Value)
			})
		},
	}
}

func newPrefsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key-path> <value>",
		Short: "Write one preference value by dotted key path",
		Long: "Write one preference value. The value is parsed as JSON, so numbers,\n" +
			"booleans, arrays, and objects keep their type; anything that does not\n" +
			"parse is stored as a string.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.PrefSet(args[0], parsePrefValue(args[1])); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
				return nil
			})
		},
	}
}

func newPrefsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <key-path>",
		Short: "Remove one preference value by dotted key path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.PrefClear(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", args[0])
				return nil
			})
		},
	}
}

func newPrefsSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "sync <download|upload>",
		Short:     "Merge preferences with the mother database",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"download", "upload"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if err := client.PrefSync(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Preferences %s complete\n", args[0])
				return nil
			})
		},
	}
}

// parsePrefValue keeps JSON typing for values that parse; everything else is
// treated as a plain string.
func parsePrefValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}
