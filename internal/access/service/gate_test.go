package service_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/stretchr/testify/require"
)

func TestSignIn_ExistingAccountAlwaysAdmitted(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	// Invitation state for the same address is irrelevant.
	issued := e.issue(t, "new-sm@example.com", domain.RoleMember)
	acct := e.seed(t, "new-sm@example.com", domain.RoleScrumMaster)

	for _, token := range []string{"", "garbage", issued.Token} {
		d, err := e.Gate.SignIn(ctx, service.SignInAttempt{Email: " New-SM@Example.com", InviteToken: token})
		require.NoError(t, err)
		require.True(t, d.Admit)
		require.Equal(t, service.PathExisting, d.Path)
		require.Equal(t, acct.ID, d.Account.ID)
		require.Equal(t, domain.RoleScrumMaster, d.Account.Role)
	}
	require.Equal(t, domain.InvitationPending, e.status(t, issued.Invitation.ID), "fast path never redeems")
}

func TestSignIn_UnknownWithoutInvitationDenied(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	d, err := e.Gate.SignIn(ctx, service.SignInAttempt{Email: "stranger@example.com"})
	require.NoError(t, err)
	require.False(t, d.Admit)
	require.Equal(t, service.PathNone, d.Path)
	require.Equal(t, "unauthorized", d.Reason)

	_, err = e.Store.Accounts().GetAccountByEmail(ctx, "stranger@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSignIn_InvitationCreatesAccount(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	issued := e.issue(t, "bob@example.com", domain.RoleScrumMaster)

	d, err := e.Gate.SignIn(ctx, service.SignInAttempt{Email: "Bob@example.com", DisplayName: " Bob ", InviteToken: issued.Token})
	require.NoError(t, err)
	require.True(t, d.Admit)
	require.Equal(t, service.PathInvitation, d.Path)
	require.Equal(t, domain.RoleScrumMaster, d.Account.Role)
	require.Equal(t, "Bob", d.Account.DisplayName)

	stored, err := e.Store.Accounts().GetAccountByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, d.Account.ID, stored.ID)
	require.Equal(t, domain.InvitationRedeemed, e.status(t, issued.Invitation.ID))

	// Second sign-in takes the fast path even with the spent token.
	d, err = e.Gate.SignIn(ctx, service.SignInAttempt{Email: "bob@example.com", InviteToken: issued.Token})
	require.NoError(t, err)
	require.True(t, d.Admit)
	require.Equal(t, service.PathExisting, d.Path)
}

func TestSignIn_InvitationFailuresDenyUniformly(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	mismatch := e.issue(t, "target@example.com", domain.RoleMember)
	revoked := e.issue(t, "revoked@example.com", domain.RoleMember)
	require.NoError(t, e.Invitations.Revoke(ctx, revoked.Invitation.ID, e.Admin.ID))

	tests := []struct {
		name   string
		email  string
		token  string
		reason string
	}{
		{name: "email mismatch", email: "intruder@example.com", token: mismatch.Token, reason: "email_mismatch"},
		{name: "revoked", email: "revoked@example.com", token: revoked.Token, reason: "revoked"},
		{name: "unknown token", email: "target@example.com", token: "nope", reason: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := e.Gate.SignIn(ctx, service.SignInAttempt{Email: tt.email, InviteToken: tt.token})
			require.NoError(t, err)
			require.False(t, d.Admit)
			require.Equal(t, tt.reason, d.Reason)

			_, err = e.Store.Accounts().GetAccountByEmail(ctx, tt.email)
			require.ErrorIs(t, err, store.ErrNotFound, "no account on deny")
		})
	}
	require.Equal(t, domain.InvitationPending, e.status(t, mismatch.Invitation.ID))
}

func TestSignIn_ExpiredInvitationDenied(t *testing.T) {
	e := newEnv(t)
	issued := e.issue(t, "late@example.com", domain.RoleMember)
	e.Clock.Advance(service.DefaultInvitationTTL + 1)

	d, err := e.Gate.SignIn(context.Background(), service.SignInAttempt{Email: "late@example.com", InviteToken: issued.Token})
	require.NoError(t, err)
	require.False(t, d.Admit)
	require.Equal(t, "expired", d.Reason)
}
