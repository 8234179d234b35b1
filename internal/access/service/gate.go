package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/audit"
	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/metrics"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/pkg/idx"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
)

// Sign-in paths, in the order the gate tries them.
const (
	PathExisting   = "existing"
	PathInvitation = "invitation"
	PathNone       = "none"
)

// SignInAttempt is what the identity provider callback hands the gate. Email
// is already verified by the provider.
type SignInAttempt struct {
	Email       string
	DisplayName string
	InviteToken string
}

// Decision is the gate outcome. Reason is for logs and audit only and must
// not be shown to the person signing in.
type Decision struct {
	Admit   bool
	Account domain.Account
	Path    string
	Reason  string
}

// Gate decides every sign-in attempt.
type Gate struct {
	Store        store.Store
	Invitations  *InvitationService
	StoreTimeout time.Duration
	Audit        *audit.Recorder
	Metrics      *metrics.Metrics
}

// SignIn admits an existing account with its stored role, or redeems the
// attempt's invitation and creates the account, or denies. A returned error
// is a store failure and never an admit.
func (g *Gate) SignIn(ctx context.Context, attempt SignInAttempt) (Decision, error) {
	ctx, span := tracer.Start(ctx, "Gate.SignIn")
	defer span.End()

	log := slogx.FromContext(ctx)
	ctx, cancel := withTimeout(ctx, g.StoreTimeout)
	defer cancel()

	// 1. Canonicalize.
	email := domain.CanonicalEmail(attempt.Email)
	if !domain.ValidEmail(email) {
		return g.deny(ctx, email, PathNone, "invalid_email"), nil
	}

	// 2. Existing account fast path.
	acct, err := retryOnce(ctx, func() (domain.Account, error) {
		return g.Store.Accounts().GetAccountByEmail(ctx, email)
	})
	if err == nil {
		return g.admit(ctx, acct, PathExisting), nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to load account for sign-in", slog.Any("error", err))
		return Decision{}, fmt.Errorf("load account: %w", err)
	}

	// 3. Invitation path.
	token := strings.TrimSpace(attempt.InviteToken)
	if token == "" {
		return g.deny(ctx, email, PathNone, Reason(ErrUnauthorized)), nil
	}

	var (
		inv     domain.Invitation
		created domain.Account
	)
	err = g.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		inv, err = g.Invitations.RedeemTx(ctx, tx, token, email)
		if err != nil {
			return err
		}

		now := nowFunc(g.Invitations.Now)
		created = domain.Account{
			ID:          idx.NewAt(now).String(),
			Email:       email,
			DisplayName: strings.TrimSpace(attempt.DisplayName),
			Role:        inv.TargetRole,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Accounts().CreateAccount(ctx, created)
	})

	switch {
	case err == nil:
		g.Invitations.recordRedeem(ctx, inv, email, nil)
		return g.admit(ctx, created, PathInvitation), nil

	case errors.Is(err, store.ErrAlreadyExists):
		// A concurrent sign-in created the account first. The redemption
		// rolled back with it; admit the account that won.
		acct, gerr := g.Store.Accounts().GetAccountByEmail(ctx, email)
		if gerr != nil {
			return Decision{}, fmt.Errorf("reload account: %w", gerr)
		}
		return g.admit(ctx, acct, PathExisting), nil

	case isInvitationOutcome(err):
		g.Invitations.recordRedeem(ctx, inv, email, err)
		return g.deny(ctx, email, PathInvitation, Reason(err)), nil
	}

	log.Error("sign-in redemption failed", slog.Any("error", err))
	return Decision{}, fmt.Errorf("redeem for sign-in: %w", err)
}

func (g *Gate) admit(ctx context.Context, acct domain.Account, path string) Decision {
	g.Metrics.SignInDecision(true, path)
	g.Audit.Record(ctx, audit.SignInAdmitted, audit.Fields{
		"account_id": acct.ID,
		"email":      acct.Email,
		"role":       acct.Role.String(),
		"path":       path,
	})
	return Decision{Admit: true, Account: acct, Path: path}
}

func (g *Gate) deny(ctx context.Context, email, path, reason string) Decision {
	g.Metrics.SignInDecision(false, path)
	g.Audit.Record(ctx, audit.SignInDenied, audit.Fields{
		"email":  email,
		"path":   path,
		"reason": reason,
	})
	return Decision{Admit: false, Path: path, Reason: reason}
}

func isInvitationOutcome(err error) bool {
	for _, target := range []error{ErrNotFound, ErrExpired, ErrAlreadyRedeemed, ErrRevoked, ErrEmailMismatch, ErrInvalidState} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
