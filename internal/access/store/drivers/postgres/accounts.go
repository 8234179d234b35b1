package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/jackc/pgx/v5"
)

type accountRow struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	DisplayName string    `db:"display_name"`
	Role        string    `db:"role"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r accountRow) domain() domain.Account {
	return domain.Account{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Role:        domain.Role(r.Role),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

const accountColumns = `id, email, display_name, role, created_at, updated_at`

type accountsRepo struct {
	db querier
}

func (r *accountsRepo) one(ctx context.Context, query string, args ...any) (domain.Account, error) {
	rows, _ := r.db.Query(ctx, query, args...)
	row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[accountRow])
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return row.domain(), nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.one(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.one(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Email, a.DisplayName, string(a.Role), a.CreatedAt, a.UpdatedAt,
	)
	return mapWriteErr(err)
}

func (r *accountsRepo) UpsertAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	acc, err := r.one(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'member'), $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			display_name = CASE WHEN EXCLUDED.display_name = '' THEN accounts.display_name ELSE EXCLUDED.display_name END,
			role = CASE WHEN $4 = '' THEN accounts.role ELSE EXCLUDED.role END,
			updated_at = EXCLUDED.updated_at
		RETURNING `+accountColumns,
		a.ID, a.Email, a.DisplayName, string(a.Role), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapWriteErr(err)
	}
	return acc, nil
}

func (r *accountsRepo) UpdateAccountRole(ctx context.Context, id string, role domain.Role, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE accounts SET role = $1, updated_at = $2 WHERE id = $3`,
		string(role), at, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *accountsRepo) ListAccounts(ctx context.Context, limit int) ([]domain.Account, error) {
	rows, _ := r.db.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY email LIMIT $1`,
		store.ClampLimit(limit),
	)
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[accountRow])
	if err != nil {
		return nil, err
	}

	out := make([]domain.Account, 0, len(list))
	for _, row := range list {
		out = append(out, row.domain())
	}
	return out, nil
}
