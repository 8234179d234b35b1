package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/audit"
	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/pkg/idx"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
)

// AccountService is the administrative boundary for accounts created outside
// the invitation flow.
type AccountService struct {
	Store        store.Store
	StoreTimeout time.Duration
	Now          func() time.Time
	Audit        *audit.Recorder
}

// Upsert creates the account for in.Email or updates its name and role.
// Invalid input fails with *domain.ValidationError before touching the store.
func (s *AccountService) Upsert(ctx context.Context, in domain.AccountInput) (domain.Account, error) {
	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	in, err := in.Validate()
	if err != nil {
		return domain.Account{}, err
	}

	now := nowFunc(s.Now)
	acct, err := s.Store.Accounts().UpsertAccount(ctx, domain.Account{
		ID:          idx.NewAt(now).String(),
		Email:       in.Email,
		DisplayName: in.DisplayName,
		Role:        in.Role,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return domain.Account{}, fmt.Errorf("upsert account: %w", err)
	}

	s.Audit.Record(ctx, audit.AccountUpserted, audit.Fields{
		"account_id": acct.ID,
		"email":      acct.Email,
		"role":       acct.Role.String(),
	})
	return acct, nil
}

// ChangeRole sets the role of accountID. Only admins may change roles.
func (s *AccountService) ChangeRole(ctx context.Context, accountID string, role domain.Role, actorID string) (domain.Account, error) {
	log := slogx.FromContext(ctx)
	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	if !role.Valid() {
		var verr domain.ValidationError
		verr.Add("role", "must be one of admin, scrum_master, member")
		return domain.Account{}, &verr
	}

	actor, err := s.Store.Accounts().GetAccountByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrUnauthorized
		}
		return domain.Account{}, fmt.Errorf("load actor: %w", err)
	}
	if !actor.Role.CanManageAccounts() {
		log.Warn("role change denied", slog.String("actor_id", actor.ID), slog.String("account_id", accountID))
		return domain.Account{}, ErrUnauthorized
	}

	target, err := s.Get(ctx, accountID)
	if err != nil {
		return domain.Account{}, err
	}
	previous := target.Role

	now := nowFunc(s.Now)
	if err := s.Store.Accounts().UpdateAccountRole(ctx, target.ID, role, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrAccountNotFound
		}
		return domain.Account{}, fmt.Errorf("update role: %w", err)
	}
	target.Role = role
	target.UpdatedAt = now

	s.Audit.Record(ctx, audit.AccountRoleChanged, audit.Fields{
		"account_id":    target.ID,
		"actor_id":      actor.ID,
		"previous_role": previous.String(),
		"role":          role.String(),
	})
	return target, nil
}

func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	acct, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrAccountNotFound
	}
	return acct, err
}

func (s *AccountService) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	acct, err := s.Store.Accounts().GetAccountByEmail(ctx, domain.CanonicalEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrAccountNotFound
	}
	return acct, err
}

func (s *AccountService) List(ctx context.Context, limit int) ([]domain.Account, error) {
	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	return retryOnce(ctx, func() ([]domain.Account, error) {
		return s.Store.Accounts().ListAccounts(ctx, store.ClampLimit(limit))
	})
}
