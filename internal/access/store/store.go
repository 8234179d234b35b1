package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict means a conditional write matched no row because the row
	// was not in the expected state.
	ErrConflict = errors.New("store: conflicting state")
)

// Store is the root data access interface implemented by each driver. Repos
// are reached through methods so a Tx hands out repos bound to the
// transaction and callers cannot mix the two by accident.
type Store interface {
	Accounts() Accounts
	Invitations() Invitations
	AuditEvents() AuditEvents

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Nested transactions are not supported.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail expects a canonical email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// CreateAccount fails with ErrAlreadyExists when the email is taken.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpsertAccount inserts a or, if the email exists, updates display name
	// and role. An empty DisplayName or Role keeps the stored value; a new row
	// with no role is a member. The stored row is returned.
	UpsertAccount(ctx context.Context, a domain.Account) (domain.Account, error)

	UpdateAccountRole(ctx context.Context, id string, role domain.Role, at time.Time) error

	// ListAccounts returns accounts ordered by email.
	ListAccounts(ctx context.Context, limit int) ([]domain.Account, error)
}

type Invitations interface {
	// CreateInvitation fails with ErrAlreadyExists on a duplicate token hash
	// or when a pending invitation for the email already exists.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)
	GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error)

	// GetPendingInvitationByEmail returns the stored-pending invitation for
	// email, even if its window has closed.
	GetPendingInvitationByEmail(ctx context.Context, email string) (domain.Invitation, error)

	// ListInvitations orders newest first.
	ListInvitations(ctx context.Context, filter domain.InvitationFilter) ([]domain.Invitation, error)

	// TransitionInvitation moves id from status from to status to in one
	// conditional write, stamping redeemed_at or revoked_at as appropriate.
	// Returns ErrConflict if the row was not in status from.
	TransitionInvitation(ctx context.Context, id string, from, to domain.InvitationStatus, at time.Time) error

	// RedeemInvitation is the pending to redeemed compare-and-swap. It also
	// requires expires_at > at. Returns ErrConflict when nothing matched.
	RedeemInvitation(ctx context.Context, id string, at time.Time) error

	// ExpirePendingInvitations persists expired for every pending row whose
	// window closed at or before now.
	ExpirePendingInvitations(ctx context.Context, now time.Time) (int64, error)
}

type AuditEvents interface {
	AppendAuditEvent(ctx context.Context, e domain.AuditEvent) error

	// ListAuditEvents returns the newest events first.
	ListAuditEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error)
}

// DefaultListLimit caps list queries when the caller gives no limit.
const DefaultListLimit = 100

// ClampLimit applies DefaultListLimit and a hard ceiling of 1000.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, 1000)
}
