package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/internal/access/store/drivers/sqlite"
	"github.com/aussiebroadwan/squadgate/pkg/cryptox"
	"github.com/aussiebroadwan/squadgate/pkg/idx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedAccount(t *testing.T, st store.Store, email string, role domain.Role) domain.Account {
	t.Helper()
	a := domain.Account{ID: idx.New().String(), Email: email, Role: role, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, st.Accounts().CreateAccount(context.Background(), a))
	return a
}

func newInvitation(issuer, email string, issuedAt time.Time) domain.Invitation {
	return domain.Invitation{
		ID:                idx.NewAt(issuedAt).String(),
		TargetEmail:       email,
		TokenHash:         cryptox.Digest(idx.New().String()),
		IssuedByAccountID: issuer,
		TargetRole:        domain.RoleMember,
		Status:            domain.InvitationPending,
		IssuedAt:          issuedAt,
		ExpiresAt:         issuedAt.Add(7 * 24 * time.Hour),
	}
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	st := newStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	admin := seedAccount(t, st, "admin@example.com", domain.RoleAdmin)

	got, err := st.Accounts().GetAccountByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, admin.ID, got.ID)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.Equal(t, t0, got.CreatedAt)

	_, err = st.Accounts().GetAccountByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	dup := admin
	dup.ID = idx.New().String()
	require.ErrorIs(t, st.Accounts().CreateAccount(ctx, dup), store.ErrAlreadyExists)

	t.Run("upsert keeps id and display name", func(t *testing.T) {
		first, err := st.Accounts().UpsertAccount(ctx, domain.Account{
			ID: idx.New().String(), Email: "sam@example.com", DisplayName: "Sam",
			Role: domain.RoleMember, CreatedAt: t0, UpdatedAt: t0,
		})
		require.NoError(t, err)

		second, err := st.Accounts().UpsertAccount(ctx, domain.Account{
			ID: idx.New().String(), Email: "sam@example.com",
			Role: domain.RoleScrumMaster, CreatedAt: t0, UpdatedAt: t0.Add(time.Hour),
		})
		require.NoError(t, err)
		require.Equal(t, first.ID, second.ID)
		require.Equal(t, "Sam", second.DisplayName)
		require.Equal(t, domain.RoleScrumMaster, second.Role)
	})

	t.Run("upsert without role", func(t *testing.T) {
		fresh, err := st.Accounts().UpsertAccount(ctx, domain.Account{
			ID: idx.New().String(), Email: "noel@example.com", CreatedAt: t0, UpdatedAt: t0,
		})
		require.NoError(t, err)
		require.Equal(t, domain.RoleMember, fresh.Role)

		_, err = st.Accounts().UpsertAccount(ctx, domain.Account{
			ID: idx.New().String(), Email: "noel@example.com", Role: domain.RoleAdmin, CreatedAt: t0, UpdatedAt: t0,
		})
		require.NoError(t, err)

		kept, err := st.Accounts().UpsertAccount(ctx, domain.Account{
			ID: idx.New().String(), Email: "noel@example.com", DisplayName: "Noel", CreatedAt: t0, UpdatedAt: t0,
		})
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, kept.Role)
		require.Equal(t, "Noel", kept.DisplayName)
	})

	t.Run("update role", func(t *testing.T) {
		require.NoError(t, st.Accounts().UpdateAccountRole(ctx, admin.ID, domain.RoleMember, t0))
		require.ErrorIs(t, st.Accounts().UpdateAccountRole(ctx, "missing", domain.RoleMember, t0), store.ErrNotFound)
	})

	list, err := st.Accounts().ListAccounts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "admin@example.com", list[0].Email)
}

func TestInvitations_Uniqueness(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	admin := seedAccount(t, st, "admin@example.com", domain.RoleAdmin)

	first := newInvitation(admin.ID, "bob@example.com", t0)
	require.NoError(t, st.Invitations().CreateInvitation(ctx, first))

	t.Run("second pending for same email rejected", func(t *testing.T) {
		again := newInvitation(admin.ID, "bob@example.com", t0.Add(time.Minute))
		require.ErrorIs(t, st.Invitations().CreateInvitation(ctx, again), store.ErrAlreadyExists)
	})

	t.Run("duplicate token hash rejected", func(t *testing.T) {
		other := newInvitation(admin.ID, "carol@example.com", t0)
		other.TokenHash = first.TokenHash
		require.ErrorIs(t, st.Invitations().CreateInvitation(ctx, other), store.ErrAlreadyExists)
	})

	t.Run("pending slot frees after revoke", func(t *testing.T) {
		require.NoError(t, st.Invitations().TransitionInvitation(ctx, first.ID,
			domain.InvitationPending, domain.InvitationRevoked, t0.Add(time.Minute)))

		again := newInvitation(admin.ID, "bob@example.com", t0.Add(2*time.Minute))
		require.NoError(t, st.Invitations().CreateInvitation(ctx, again))

		pending, err := st.Invitations().GetPendingInvitationByEmail(ctx, "bob@example.com")
		require.NoError(t, err)
		require.Equal(t, again.ID, pending.ID)

		revoked, err := st.Invitations().GetInvitationByID(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationRevoked, revoked.Status)
		require.NotNil(t, revoked.RevokedAt)
	})
}

func TestInvitations_RedeemCAS(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	admin := seedAccount(t, st, "admin@example.com", domain.RoleAdmin)

	inv := newInvitation(admin.ID, "bob@example.com", t0)
	require.NoError(t, st.Invitations().CreateInvitation(ctx, inv))

	// Not redeemable once the window closed, even though stored as pending.
	require.ErrorIs(t, st.Invitations().RedeemInvitation(ctx, inv.ID, inv.ExpiresAt), store.ErrConflict)

	require.NoError(t, st.Invitations().RedeemInvitation(ctx, inv.ID, t0.Add(time.Hour)))
	require.ErrorIs(t, st.Invitations().RedeemInvitation(ctx, inv.ID, t0.Add(time.Hour)), store.ErrConflict)

	got, err := st.Invitations().GetInvitationByTokenHash(ctx, inv.TokenHash)
	require.NoError(t, err)
	require.Equal(t, domain.InvitationRedeemed, got.Status)
	require.Equal(t, t0.Add(time.Hour), *got.RedeemedAt)

	// Terminal: cannot be revoked afterwards.
	err = st.Invitations().TransitionInvitation(ctx, inv.ID, domain.InvitationPending, domain.InvitationRevoked, t0)
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestInvitations_ListAndExpire(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	admin := seedAccount(t, st, "admin@example.com", domain.RoleAdmin)

	old := newInvitation(admin.ID, "old@example.com", t0.Add(-30*24*time.Hour))
	fresh := newInvitation(admin.ID, "fresh@example.com", t0)
	require.NoError(t, st.Invitations().CreateInvitation(ctx, old))
	require.NoError(t, st.Invitations().CreateInvitation(ctx, fresh))

	all, err := st.Invitations().ListInvitations(ctx, domain.InvitationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, fresh.ID, all[0].ID, "newest first")

	n, err := st.Invitations().ExpirePendingInvitations(ctx, t0)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	expired, err := st.Invitations().ListInvitations(ctx, domain.InvitationFilter{Status: domain.InvitationExpired})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, old.ID, expired[0].ID)

	byEmail, err := st.Invitations().ListInvitations(ctx, domain.InvitationFilter{Email: "fresh@example.com", Limit: 5})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		a := domain.Account{ID: idx.New().String(), Email: "tx@example.com", Role: domain.RoleMember, CreatedAt: t0, UpdatedAt: t0}
		require.NoError(t, tx.Accounts().CreateAccount(ctx, a))

		require.ErrorIs(t, tx.WithTx(ctx, func(store.Tx) error { return nil }), sql.ErrTxDone)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Accounts().GetAccountByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuditEvents(t *testing.T) {
	ctx := context.Background()
	st := newStore(t)

	for i, name := range []string{"invitation.issued", "invitation.redeemed"} {
		require.NoError(t, st.AuditEvents().AppendAuditEvent(ctx, domain.AuditEvent{
			ID:         idx.New().String(),
			Event:      name,
			Fields:     map[string]string{"email": "abc123"},
			OccurredAt: t0.Add(time.Duration(i) * time.Second),
		}))
	}

	events, err := st.AuditEvents().ListAuditEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "invitation.redeemed", events[0].Event)
	require.Equal(t, "abc123", events[0].Fields["email"])
}
