package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
)

func newInvitationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invitations",
		Short: "Issue, list and revoke invitations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newInvitationsIssueCommand())
	cmd.AddCommand(newInvitationsListCommand())
	cmd.AddCommand(newInvitationsRevokeCommand())
	cmd.AddCommand(newInvitationsSweepCommand())
	return cmd
}

func newInvitationsIssueCommand() *cobra.Command {
	var (
		email string
		role  string
		as    string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an invitation and print its token",
		Long:  "Issues an invitation on behalf of --as. The token is printed once and cannot be recovered later.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				issuer, err := svc.actorID(ctx, as)
				if err != nil {
					return err
				}
				issued, err := svc.Invitations.Issue(ctx, email, r, issuer)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "invitation: %s\n", issued.Invitation.ID)
				fmt.Fprintf(out, "expires:    %s\n", issued.Invitation.ExpiresAt.Format(time.RFC3339))
				fmt.Fprintf(out, "token:      %s\n", issued.Token)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email the invitation is for")
	cmd.Flags().StringVar(&role, "role", "member", "Role granted on redemption")
	cmd.Flags().StringVar(&as, "as", "", "Email of the issuing account")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newInvitationsListCommand() *cobra.Command {
	var (
		status string
		email  string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invitations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				invitations, err := svc.Invitations.List(ctx, domain.InvitationFilter{
					Status: domain.InvitationStatus(status),
					Email:  email,
					Limit:  limit,
				})
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEMAIL\tROLE\tSTATUS\tEXPIRES")
				for _, inv := range invitations {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
						inv.ID, inv.TargetEmail, inv.TargetRole, inv.Status, inv.ExpiresAt.Format(time.RFC3339))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "pending, redeemed, revoked or expired")
	cmd.Flags().StringVar(&email, "email", "", "Only invitations for this email")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows")
	return cmd
}

func newInvitationsRevokeCommand() *cobra.Command {
	var (
		id string
		as string
	)

	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke a pending invitation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				actor, err := svc.actorID(ctx, as)
				if err != nil {
					return err
				}
				if err := svc.Invitations.Revoke(ctx, id, actor); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Invitation ID")
	cmd.Flags().StringVar(&as, "as", "", "Email of the revoking account")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func newInvitationsSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark lapsed pending invitations as expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *services) error {
				n, err := svc.Housekeeping.Sweep(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "expired %d invitation(s)\n", n)
				return nil
			})
		},
	}
}
