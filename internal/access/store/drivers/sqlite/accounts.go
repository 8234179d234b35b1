package sqlite

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/jmoiron/sqlx"
)

type accountRow struct {
	ID          string `db:"id"`
	Email       string `db:"email"`
	DisplayName string `db:"display_name"`
	Role        string `db:"role"`
	CreatedAt   int64  `db:"created_at"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r accountRow) domain() domain.Account {
	return domain.Account{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Role:        domain.Role(r.Role),
		CreatedAt:   fromMillis(r.CreatedAt),
		UpdatedAt:   fromMillis(r.UpdatedAt),
	}
}

func newAccountRow(a domain.Account) accountRow {
	return accountRow{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        string(a.Role),
		CreatedAt:   toMillis(a.CreatedAt),
		UpdatedAt:   toMillis(a.UpdatedAt),
	}
}

const accountColumns = `id, email, display_name, role, created_at, updated_at`

type accountsRepo struct {
	db sqlx.ExtContext
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	var row accountRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return row.domain(), nil
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	var row accountRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return row.domain(), nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (:id, :email, :display_name, :role, :created_at, :updated_at)`,
		newAccountRow(a),
	)
	return mapWriteErr(err)
}

func (r *accountsRepo) UpsertAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	_, err := sqlx.NamedExecContext(ctx, r.db, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (:id, :email, :display_name, CASE WHEN :role = '' THEN 'member' ELSE :role END, :created_at, :updated_at)
		ON CONFLICT (email) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name = '' THEN accounts.display_name ELSE excluded.display_name END,
			role = CASE WHEN :role = '' THEN accounts.role ELSE excluded.role END,
			updated_at = excluded.updated_at`,
		newAccountRow(a),
	)
	if err != nil {
		return domain.Account{}, mapWriteErr(err)
	}
	return r.GetAccountByEmail(ctx, a.Email)
}

func (r *accountsRepo) UpdateAccountRole(ctx context.Context, id string, role domain.Role, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), toMillis(at), id,
	)
	if err := affectedOrConflict(res, err); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *accountsRepo) ListAccounts(ctx context.Context, limit int) ([]domain.Account, error) {
	var rows []accountRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT `+accountColumns+` FROM accounts ORDER BY email LIMIT ?`,
		store.ClampLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.domain())
	}
	return out, nil
}
