package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/jmoiron/sqlx"
)

type invitationRow struct {
	ID                string        `db:"id"`
	TargetEmail       string        `db:"target_email"`
	TokenHash         string        `db:"token_hash"`
	IssuedByAccountID string        `db:"issued_by_account_id"`
	TargetRole        string        `db:"target_role"`
	Status            string        `db:"status"`
	IssuedAt          int64         `db:"issued_at"`
	ExpiresAt         int64         `db:"expires_at"`
	RedeemedAt        sql.NullInt64 `db:"redeemed_at"`
	RevokedAt         sql.NullInt64 `db:"revoked_at"`
}

func (r invitationRow) domain() domain.Invitation {
	return domain.Invitation{
		ID:                r.ID,
		TargetEmail:       r.TargetEmail,
		TokenHash:         r.TokenHash,
		IssuedByAccountID: r.IssuedByAccountID,
		TargetRole:        domain.Role(r.TargetRole),
		Status:            domain.InvitationStatus(r.Status),
		IssuedAt:          fromMillis(r.IssuedAt),
		ExpiresAt:         fromMillis(r.ExpiresAt),
		RedeemedAt:        fromNullMillis(r.RedeemedAt),
		RevokedAt:         fromNullMillis(r.RevokedAt),
	}
}

const invitationColumns = `id, target_email, token_hash, issued_by_account_id, target_role,
	status, issued_at, expires_at, redeemed_at, revoked_at`

type invitationsRepo struct {
	db sqlx.ExtContext
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (id, target_email, token_hash, issued_by_account_id,
			target_role, status, issued_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TargetEmail, inv.TokenHash, inv.IssuedByAccountID,
		string(inv.TargetRole), string(inv.Status), toMillis(inv.IssuedAt), toMillis(inv.ExpiresAt),
	)
	return mapWriteErr(err)
}

func (r *invitationsRepo) get(ctx context.Context, where string, arg any) (domain.Invitation, error) {
	var row invitationRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+invitationColumns+` FROM invitations WHERE `+where, arg)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return row.domain(), nil
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invitation, error) {
	return r.get(ctx, `token_hash = ?`, hash)
}

func (r *invitationsRepo) GetPendingInvitationByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	return r.get(ctx, `status = 'pending' AND target_email = ?`, email)
}

func (r *invitationsRepo) ListInvitations(ctx context.Context, filter domain.InvitationFilter) ([]domain.Invitation, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Email != "" {
		conds = append(conds, "target_email = ?")
		args = append(args, filter.Email)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := `SELECT ` + invitationColumns + ` FROM invitations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY issued_at DESC, id DESC LIMIT ?`
	args = append(args, store.ClampLimit(filter.Limit))

	var rows []invitationRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, err
	}

	out := make([]domain.Invitation, 0, len(rows))
	for _, row := range rows {
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
	var stamp string
	switch to {
	case domain.InvitationRedeemed:
		stamp = ", redeemed_at = ?"
	case domain.InvitationRevoked:
		stamp = ", revoked_at = ?"
	case domain.InvitationExpired:
	default:
		return fmt.Errorf("invalid target status %q", to)
	}

	args := []any{string(to)}
	if stamp != "" {
		args = append(args, toMillis(at))
	}
	args = append(args, id, string(from))

	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = ?`+stamp+` WHERE id = ? AND status = ?`,
		args...,
	)
	return affectedOrConflict(res, err)
}

func (r *invitationsRepo) RedeemInvitation(ctx context.Context, id string, at time.Time) error {
	ms := toMillis(at)
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'redeemed', redeemed_at = ?
		WHERE id = ? AND status = 'pending' AND expires_at > ?`,
		ms, id, ms,
	)
	return affectedOrConflict(res, err)
}

func (r *invitationsRepo) ExpirePendingInvitations(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'expired' WHERE status = 'pending' AND expires_at <= ?`,
		toMillis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
