package commands

import (
	"errors"
	"fmt"

	"github.com/sitebrand/internal/db"
	"github.com/spf13/cobra"
)

func userCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage operator accounts",
	}
	cmd.AddCommand(userEnsureCmd(a))
	return cmd
}

func userEnsureCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "ensure [username]",
		Short: "Create an operator account if it does not exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				return errors.New("--password is required")
			}
			created, err := db.EnsureUser(a.db.WithContext(cmd.Context()), args[0], password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "User %s already exists\n", args[0])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password for a new account")
	return cmd
}
