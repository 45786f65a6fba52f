package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cadenza/internal/ipc"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the mother catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return errors.New("login requires --email and --password")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Login(email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", resp.UserID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}
