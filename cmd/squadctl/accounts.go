package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
)

func newAccountsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Create and inspect accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAccountsUpsertCommand())
	cmd.AddCommand(newAccountsListCommand())
	return cmd
}

func newAccountsUpsertCommand() *cobra.Command {
	var (
		email string
		name  string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create an account or update an existing one by email",
		Long:  "Creates the account if the email is new, otherwise updates its display name and role. Use it to bootstrap the first admin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// An empty role keeps whatever the account already has.
			var r domain.Role
			if role != "" {
				var err error
				if r, err = domain.ParseRole(role); err != nil {
					return err
				}
			}
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				acct, err := svc.Accounts.Upsert(ctx, domain.AccountInput{
					Email:       email,
					DisplayName: name,
					Role:        r,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", acct.ID, acct.Email, acct.Role)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", "", "admin, scrum_master or member (default member for new accounts, unchanged otherwise)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newAccountsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				accounts, err := svc.Accounts.List(ctx, limit)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tCREATED")
				for _, a := range accounts {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Email, a.Role, a.CreatedAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum rows")
	return cmd
}
