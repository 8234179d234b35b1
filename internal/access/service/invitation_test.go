package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestIssue_StoresOnlyDigest(t *testing.T) {
	e := newEnv(t)

	issued := e.issue(t, "  Carol@Example.com ", domain.RoleMember)
	require.GreaterOrEqual(t, len(issued.Token), 43, "256-bit token")
	require.Equal(t, "carol@example.com", issued.Invitation.TargetEmail)
	require.Equal(t, domain.InvitationPending, issued.Invitation.Status)
	require.Equal(t, t0.Add(service.DefaultInvitationTTL), issued.Invitation.ExpiresAt)

	stored, err := e.Store.Invitations().GetInvitationByID(context.Background(), issued.Invitation.ID)
	require.NoError(t, err)
	require.Equal(t, cryptox.Digest(issued.Token), stored.TokenHash)
	require.NotContains(t, stored.TokenHash, issued.Token)
}

func TestIssue_Supersedes(t *testing.T) {
	e := newEnv(t)

	first := e.issue(t, "alice@example.com", domain.RoleMember)
	e.Clock.Advance(time.Minute)
	second := e.issue(t, "alice@example.com", domain.RoleMember)

	require.Equal(t, domain.InvitationRevoked, e.status(t, first.Invitation.ID))
	require.Equal(t, domain.InvitationPending, e.status(t, second.Invitation.ID))

	_, err := e.Invitations.Redeem(context.Background(), first.Token, "alice@example.com")
	require.ErrorIs(t, err, service.ErrRevoked)
}

func TestIssue_LapsedPredecessorIsExpiredNotRevoked(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first := e.issue(t, "alice@example.com", domain.RoleMember)
	e.Clock.Advance(service.DefaultInvitationTTL + time.Minute)
	second := e.issue(t, "alice@example.com", domain.RoleMember)

	require.Equal(t, domain.InvitationExpired, e.status(t, first.Invitation.ID))
	require.Equal(t, domain.InvitationPending, e.status(t, second.Invitation.ID))

	_, err := e.Invitations.Redeem(ctx, first.Token, "alice@example.com")
	require.ErrorIs(t, err, service.ErrExpired)

	events, err := e.Store.AuditEvents().ListAuditEvents(ctx, 50)
	require.NoError(t, err)
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Event)
	}
	require.Contains(t, names, "invitation.expired")
	require.NotContains(t, names, "invitation.superseded")
}

// lostRaceStore fails the next n supersede transitions with ErrConflict, the
// way a concurrent issuer that got there first shows up.
type lostRaceStore struct {
	store.Store
	n int
}

func (s *lostRaceStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return fn(&lostRaceTx{Tx: tx, s: s})
	})
}

type lostRaceTx struct {
	store.Tx
	s *lostRaceStore
}

func (t *lostRaceTx) Invitations() store.Invitations {
	return lostRaceInvitations{Invitations: t.Tx.Invitations(), s: t.s}
}

type lostRaceInvitations struct {
	store.Invitations
	s *lostRaceStore
}

func (r lostRaceInvitations) TransitionInvitation(ctx context.Context, id string, from, to domain.InvitationStatus, at time.Time) error {
	if r.s.n > 0 {
		r.s.n--
		return store.ErrConflict
	}
	return r.Invitations.TransitionInvitation(ctx, id, from, to, at)
}

func TestIssue_RetriesLostSupersede(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	first := e.issue(t, "carol@example.com", domain.RoleMember)

	racing := &lostRaceStore{Store: e.Store, n: 1}
	svc := &service.InvitationService{Store: racing, Now: e.Clock.Now, Audit: e.Audit}

	second, err := svc.Issue(ctx, "carol@example.com", domain.RoleMember, e.Admin.ID)
	require.NoError(t, err)
	require.Zero(t, racing.n)
	require.Equal(t, domain.InvitationRevoked, e.status(t, first.Invitation.ID))
	require.Equal(t, domain.InvitationPending, e.status(t, second.Invitation.ID))

	// Only one retry.
	racing.n = 2
	_, err = svc.Issue(ctx, "carol@example.com", domain.RoleMember, e.Admin.ID)
	require.ErrorIs(t, err, store.ErrConflict)
	require.Equal(t, domain.InvitationPending, e.status(t, second.Invitation.ID))
}

func TestIssue_Rejects(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	member := e.seed(t, "member@example.com", domain.RoleMember)

	tests := []struct {
		name     string
		email    string
		role     domain.Role
		issuedBy string
		wantErr  error
		field    string
	}{
		{name: "bad email", email: "not-an-email", role: domain.RoleMember, issuedBy: e.Admin.ID, field: "target_email"},
		{name: "bad role", email: "x@example.com", role: "owner", issuedBy: e.Admin.ID, field: "target_role"},
		{name: "existing account", email: "MEMBER@example.com", role: domain.RoleAdmin, issuedBy: e.Admin.ID, field: "target_email"},
		{name: "unknown issuer", email: "x@example.com", role: domain.RoleMember, issuedBy: "missing", wantErr: service.ErrUnauthorized},
		{name: "member issuer", email: "x@example.com", role: domain.RoleMember, issuedBy: member.ID, wantErr: service.ErrUnauthorized},
		{name: "scrum master grants admin", email: "x@example.com", role: domain.RoleAdmin, issuedBy: e.SM.ID, wantErr: service.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Invitations.Issue(ctx, tt.email, tt.role, tt.issuedBy)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Contains(t, verr.Fields, tt.field)
		})
	}

	// Scrum masters can still invite scrum masters and members.
	_, err := e.Invitations.Issue(ctx, "dev@example.com", domain.RoleScrumMaster, e.SM.ID)
	require.NoError(t, err)
}

func TestRedeem_BobExample(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	issued := e.issue(t, "bob@example.com", domain.RoleScrumMaster)

	role, err := e.Invitations.Redeem(ctx, issued.Token, "bob@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleScrumMaster, role)
	require.Equal(t, domain.InvitationRedeemed, e.status(t, issued.Invitation.ID))

	_, err = e.Invitations.Redeem(ctx, issued.Token, "bob@example.com")
	require.ErrorIs(t, err, service.ErrAlreadyRedeemed)
}

func TestRedeem_EmailMismatchLeavesPending(t *testing.T) {
	e := newEnv(t)
	issued := e.issue(t, "dana@example.com", domain.RoleMember)

	_, err := e.Invitations.Redeem(context.Background(), issued.Token, "eve@example.com")
	require.ErrorIs(t, err, service.ErrEmailMismatch)
	require.Equal(t, domain.InvitationPending, e.status(t, issued.Invitation.ID))

	// Case and whitespace do not count as a mismatch.
	role, err := e.Invitations.Redeem(context.Background(), issued.Token, " DANA@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, role)
}

func TestRedeem_ExpiredWhileStoredPending(t *testing.T) {
	e := newEnv(t)
	issued := e.issue(t, "frank@example.com", domain.RoleMember)

	e.Clock.Advance(service.DefaultInvitationTTL)

	_, err := e.Invitations.Redeem(context.Background(), issued.Token, "frank@example.com")
	require.ErrorIs(t, err, service.ErrExpired)
	require.Equal(t, domain.InvitationPending, e.status(t, issued.Invitation.ID), "expiry is lazy")
}

func TestRedeem_UnknownToken(t *testing.T) {
	e := newEnv(t)

	for _, token := range []string{"", "never-issued"} {
		_, err := e.Invitations.Redeem(context.Background(), token, "x@example.com")
		require.ErrorIs(t, err, service.ErrNotFound)
	}
}

func TestRedeem_ConcurrentSingleWinner(t *testing.T) {
	e := newFileEnv(t)
	issued := e.issue(t, "grace@example.com", domain.RoleMember)

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		lost int
	)
	start := make(chan struct{})
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := e.Invitations.Redeem(context.Background(), issued.Token, "grace@example.com")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, service.ErrAlreadyRedeemed):
				lost++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, callers-1, lost)
	require.Equal(t, domain.InvitationRedeemed, e.status(t, issued.Invitation.ID))
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	issued := e.issue(t, "heidi@example.com", domain.RoleMember)

	inv, err := e.Invitations.Validate(ctx, issued.Token)
	require.NoError(t, err)
	require.Equal(t, issued.Invitation.ID, inv.ID)

	_, err = e.Invitations.Redeem(ctx, issued.Token, "heidi@example.com")
	require.NoError(t, err)

	_, err = e.Invitations.Validate(ctx, issued.Token)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.ErrorIs(t, err, service.ErrAlreadyRedeemed, "precise cause stays in the chain")
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	other := e.seed(t, "sm2@example.com", domain.RoleScrumMaster)

	t.Run("issuer revokes", func(t *testing.T) {
		issued, err := e.Invitations.Issue(ctx, "ivan@example.com", domain.RoleMember, e.SM.ID)
		require.NoError(t, err)

		require.ErrorIs(t, e.Invitations.Revoke(ctx, issued.Invitation.ID, other.ID), service.ErrUnauthorized)
		require.NoError(t, e.Invitations.Revoke(ctx, issued.Invitation.ID, e.SM.ID))
		require.Equal(t, domain.InvitationRevoked, e.status(t, issued.Invitation.ID))

		require.ErrorIs(t, e.Invitations.Revoke(ctx, issued.Invitation.ID, e.Admin.ID), service.ErrRevoked)

		_, err = e.Invitations.Redeem(ctx, issued.Token, "ivan@example.com")
		require.ErrorIs(t, err, service.ErrRevoked)
	})

	t.Run("redeemed is invalid state", func(t *testing.T) {
		issued := e.issue(t, "judy@example.com", domain.RoleMember)
		_, err := e.Invitations.Redeem(ctx, issued.Token, "judy@example.com")
		require.NoError(t, err)

		require.ErrorIs(t, e.Invitations.Revoke(ctx, issued.Invitation.ID, e.Admin.ID), service.ErrInvalidState)
		require.Equal(t, domain.InvitationRedeemed, e.status(t, issued.Invitation.ID))
	})

	t.Run("unknown", func(t *testing.T) {
		require.ErrorIs(t, e.Invitations.Revoke(ctx, "missing", e.Admin.ID), service.ErrNotFound)
	})
}

func TestList_EffectiveStatusNoSecrets(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	old := e.issue(t, "old@example.com", domain.RoleMember)
	e.Clock.Advance(service.DefaultInvitationTTL + time.Hour)
	fresh := e.issue(t, "fresh@example.com", domain.RoleMember)

	all, err := e.Invitations.List(ctx, domain.InvitationFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, fresh.Invitation.ID, all[0].ID, "newest first")
	require.Equal(t, domain.InvitationPending, all[0].Status)
	require.Equal(t, old.Invitation.ID, all[1].ID)
	require.Equal(t, domain.InvitationExpired, all[1].Status)

	pending, err := e.Invitations.List(ctx, domain.InvitationFilter{Status: domain.InvitationPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, fresh.Invitation.ID, pending[0].ID)

	expired, err := e.Invitations.List(ctx, domain.InvitationFilter{Status: domain.InvitationExpired})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, old.Invitation.ID, expired[0].ID)

	byEmail, err := e.Invitations.List(ctx, domain.InvitationFilter{Email: "FRESH@example.com"})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)

	_, err = e.Invitations.List(ctx, domain.InvitationFilter{Status: "bogus"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestInvitations_AuditHasNoPII(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	issued := e.issue(t, "secret-person@example.com", domain.RoleMember)
	_, err := e.Invitations.Redeem(ctx, issued.Token, "secret-person@example.com")
	require.NoError(t, err)

	events, err := e.Store.AuditEvents().ListAuditEvents(ctx, 50)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Event)
		for _, v := range ev.Fields {
			require.False(t, strings.Contains(v, "secret-person"), "raw email leaked in %s", ev.Event)
			require.False(t, strings.Contains(v, issued.Token), "raw token leaked in %s", ev.Event)
		}
	}
	require.Contains(t, names, "invitation.issued")
	require.Contains(t, names, "invitation.redeemed")
}
