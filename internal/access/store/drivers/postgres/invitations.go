package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/jackc/pgx/v5"
)

type invitationRow struct {
	ID                string     `db:"id"`
	TargetEmail       string     `db:"target_email"`
	TokenHash         string     `db:"token_hash"`
	IssuedByAccountID string     `db:"issued_by_account_id"`
	TargetRole        string     `db:"target_role"`
	Status            string     `db:"status"`
	IssuedAt          time.Time  `db:"issued_at"`
	ExpiresAt         time.Time  `db:"expires_at"`
	RedeemedAt        *time.Time `db:"redeemed_at"`
	RevokedAt         *time.Time `db:"revoked_at"`
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (r invitationRow) domain() domain.Invitation {
	return domain.Invitation{
		ID:                r.ID,
		TargetEmail:       r.TargetEmail,
		TokenHash:         r.TokenHash,
		IssuedByAccountID: r.IssuedByAccountID,
		TargetRole:        domain.Role(r.TargetRole),
		Status:            domain.InvitationStatus(r.Status),
		IssuedAt:          r.IssuedAt.UTC(),
		ExpiresAt:         r.ExpiresAt.UTC(),
		RedeemedAt:        utcPtr(r.RedeemedAt),
		RevokedAt:         utcPtr(r.RevokedAt),
	}
}

const invitationColumns = `id, target_email, token_hash, issued_by_account_id, target_role,
	status, issued_at, expires_at, redeemed_at, revoked_at`

type invitationsRepo struct {
	db querier
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO invitations (id, target_email, token_hash, issued_by_account_id,
			target_role, status, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.TargetEmail, inv.TokenHash, inv.IssuedByAccountID,
		string(inv.TargetRole), string(inv.Status), inv.IssuedAt, inv.ExpiresAt,
	)
	return mapWriteErr(err)
}

func (r *invitationsRepo) get(ctx context.Context, where string, arg any) (domain.Invitation, error) {
	rows, _ := r.db.Query(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE `+where, arg)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[invitationRow])
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return row.domain(), nil
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	return r.get(ctx, `token_hash = $1`, hash)
}

func (r *invitationsRepo) GetPendingInvitationByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	return r.get(ctx, `status = 'pending' AND target_email = $1`, email)
}

func (r *invitationsRepo) ListInvitations(ctx context.Context, filter domain.InvitationFilter) ([]domain.Invitation, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("target_email = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + invitationColumns + ` FROM invitations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	args = append(args, store.ClampLimit(filter.Limit))
	query += fmt.Sprintf(` ORDER BY issued_at DESC, id DESC LIMIT $%d`, len(args))

	rows, _ := r.db.Query(ctx, query, args...)
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[invitationRow])
	if err != nil {
		return nil, err
	}

	out := make([]domain.Invitation, 0, len(list))
	for _, row := range list {
		out = append(out, row.domain())
	}
	return out, nil
}

func (r *invitationsRepo) TransitionInvitation(
	ctx context.Context,
	id string,
	from, to domain.InvitationStatus,
	at time.Time,
) error {
	switch to {
	case domain.InvitationRedeemed:
		return conflictIfNone(r.db.Exec(ctx,
			`UPDATE invitations SET status = $1, redeemed_at = $2 WHERE id = $3 AND status = $4`,
			string(to), at, id, string(from)))
	case domain.InvitationRevoked:
		return conflictIfNone(r.db.Exec(ctx,
			`UPDATE invitations SET status = $1, revoked_at = $2 WHERE id = $3 AND status = $4`,
			string(to), at, id, string(from)))
	case domain.InvitationExpired:
		return conflictIfNone(r.db.Exec(ctx,
			`UPDATE invitations SET status = $1 WHERE id = $2 AND status = $3`,
			string(to), id, string(from)))
	}
	return fmt.Errorf("invalid target status %q", to)
}

func (r *invitationsRepo) RedeemInvitation(ctx context.Context, id string, at time.Time) error {
	return conflictIfNone(r.db.Exec(ctx, `
		UPDATE invitations
		SET status = 'redeemed', redeemed_at = $2
		WHERE id = $1 AND status = 'pending' AND expires_at > $2`,
		id, at,
	))
}

func (r *invitationsRepo) ExpirePendingInvitations(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE invitations SET status = 'expired' WHERE status = 'pending' AND expires_at <= $1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
