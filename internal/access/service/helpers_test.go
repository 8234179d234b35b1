package service_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/audit"
	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/internal/access/store/drivers/sqlite"
	"github.com/aussiebroadwan/squadgate/pkg/idx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// clock is a settable time source shared by every service in an env.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	Store       store.Store
	Clock       *clock
	Invitations *service.InvitationService
	Gate        *service.Gate
	Accounts    *service.AccountService
	Audit       *audit.Recorder

	Admin domain.Account
	SM    domain.Account
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	return setupEnv(t, st)
}

// newFileEnv uses a database file so concurrent callers contend for the
// connection like they would in production.
func newFileEnv(t *testing.T) *env {
	t.Helper()
	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "squadgate.db"))
	require.NoError(t, err)
	return setupEnv(t, st)
}

func setupEnv(t *testing.T, st *sqlite.Store) *env {
	t.Helper()
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	clk := &clock{now: t0}
	rec := audit.NewRecorder(st)
	rec.Now = clk.Now

	inv := &service.InvitationService{Store: st, Now: clk.Now, Audit: rec}
	e := &env{
		Store:       st,
		Clock:       clk,
		Invitations: inv,
		Gate:        &service.Gate{Store: st, Invitations: inv, Audit: rec},
		Accounts:    &service.AccountService{Store: st, Now: clk.Now, Audit: rec},
		Audit:       rec,
	}
	e.Admin = e.seed(t, "admin@example.com", domain.RoleAdmin)
	e.SM = e.seed(t, "sm@example.com", domain.RoleScrumMaster)
	return e
}

func (e *env) seed(t *testing.T, email string, role domain.Role) domain.Account {
	t.Helper()
	a := domain.Account{ID: idx.NewAt(t0).String(), Email: email, Role: role, CreatedAt: t0, UpdatedAt: t0}
	require.NoError(t, e.Store.Accounts().CreateAccount(context.Background(), a))
	return a
}

func (e *env) issue(t *testing.T, email string, role domain.Role) service.IssuedInvitation {
	t.Helper()
	issued, err := e.Invitations.Issue(context.Background(), email, role, e.Admin.ID)
	require.NoError(t, err)
	return issued
}

func (e *env) status(t *testing.T, id string) domain.InvitationStatus {
	t.Helper()
	inv, err := e.Store.Invitations().GetInvitationByID(context.Background(), id)
	require.NoError(t, err)
	return inv.Status
}
