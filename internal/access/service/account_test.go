package service_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Upsert(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	created, err := e.Accounts.Upsert(ctx, domain.AccountInput{Email: " Lead@Example.com ", DisplayName: "Lead", Role: domain.RoleScrumMaster})
	require.NoError(t, err)
	require.Equal(t, "lead@example.com", created.Email)

	again, err := e.Accounts.Upsert(ctx, domain.AccountInput{Email: "lead@example.com", DisplayName: "Team Lead", Role: domain.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, created.ID, again.ID, "keyed by email")
	require.Equal(t, domain.RoleAdmin, again.Role)
	require.Equal(t, "Team Lead", again.DisplayName)

	defaulted, err := e.Accounts.Upsert(ctx, domain.AccountInput{Email: "plain@example.com"})
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, defaulted.Role)

	_, err = e.Accounts.Upsert(ctx, domain.AccountInput{Email: "bad", Role: "root"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "email")
	require.Contains(t, verr.Fields, "role")
}

func TestAccountService_UpsertWithoutRoleKeepsStoredRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	renamed, err := e.Accounts.Upsert(ctx, domain.AccountInput{Email: "ADMIN@example.com", DisplayName: "Renamed"})
	require.NoError(t, err)
	require.Equal(t, e.Admin.ID, renamed.ID)
	require.Equal(t, "Renamed", renamed.DisplayName)
	require.Equal(t, domain.RoleAdmin, renamed.Role, "a name-only upsert must not demote")

	got, err := e.Accounts.Get(ctx, e.Admin.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)

	demoted, err := e.Accounts.Upsert(ctx, domain.AccountInput{Email: "admin@example.com", Role: domain.RoleMember})
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, demoted.Role, "an explicit role still applies")
	require.Equal(t, "Renamed", demoted.DisplayName)
}

func TestAccountService_ChangeRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	member := e.seed(t, "m@example.com", domain.RoleMember)

	_, err := e.Accounts.ChangeRole(ctx, member.ID, domain.RoleScrumMaster, e.SM.ID)
	require.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = e.Accounts.ChangeRole(ctx, "missing", domain.RoleScrumMaster, e.Admin.ID)
	require.ErrorIs(t, err, service.ErrAccountNotFound)

	_, err = e.Accounts.ChangeRole(ctx, member.ID, "boss", e.Admin.ID)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	updated, err := e.Accounts.ChangeRole(ctx, member.ID, domain.RoleScrumMaster, e.Admin.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RoleScrumMaster, updated.Role)

	got, err := e.Accounts.GetByEmail(ctx, "M@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleScrumMaster, got.Role)

	list, err := e.Accounts.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
}
