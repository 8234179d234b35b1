package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/audit"
	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/metrics"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/pkg/cryptox"
	"github.com/aussiebroadwan/squadgate/pkg/idx"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
)

// DefaultInvitationTTL is how long an issued invitation stays redeemable.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// InvitationService owns the invitation lifecycle. It holds no state of its
// own; everything lives in Store.
type InvitationService struct {
	Store        store.Store
	TTL          time.Duration
	StoreTimeout time.Duration
	Now          func() time.Time
	Audit        *audit.Recorder
	Metrics      *metrics.Metrics
}

// IssuedInvitation is returned once by Issue. Token is the only copy of the
// plaintext secret.
type IssuedInvitation struct {
	Token      string
	Invitation domain.Invitation
}

func (s *InvitationService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultInvitationTTL
	}
	return s.TTL
}

// Issue creates a pending invitation for targetEmail, superseding any pending
// invitation for the same address.
//
// Returns:
//   - *domain.ValidationError for a malformed email or role, or when the
//     address already has an account
//   - ErrUnauthorized when issuedBy is unknown or may not grant targetRole
func (s *InvitationService) Issue(ctx context.Context, targetEmail string, targetRole domain.Role, issuedBy string) (IssuedInvitation, error) {
	ctx, span := tracer.Start(ctx, "InvitationService.Issue")
	defer span.End()

	log := slogx.FromContext(ctx)
	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	// 1. Validate input.
	email := domain.CanonicalEmail(targetEmail)
	var verr domain.ValidationError
	if !domain.ValidEmail(email) {
		verr.Add("target_email", "must be a valid email address")
	}
	if !targetRole.Valid() {
		verr.Add("target_role", "must be one of admin, scrum_master, member")
	}
	if verr.HasErrors() {
		return IssuedInvitation{}, &verr
	}

	// 2. Re-check the issuer.
	issuer, err := s.Store.Accounts().GetAccountByID(ctx, issuedBy)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invitation issuer not found", slog.String("issued_by", issuedBy))
			return IssuedInvitation{}, ErrUnauthorized
		}
		return IssuedInvitation{}, fmt.Errorf("load issuer: %w", err)
	}
	if !issuer.Role.CanGrant(targetRole) {
		log.Warn("issuer may not grant role",
			slog.String("issued_by", issuer.ID),
			slog.String("issuer_role", issuer.Role.String()),
			slog.String("target_role", targetRole.String()),
		)
		return IssuedInvitation{}, ErrUnauthorized
	}

	// 3. An address that already signs in needs no invitation.
	if _, err := s.Store.Accounts().GetAccountByEmail(ctx, email); err == nil {
		verr.Add("target_email", "already has an account")
		return IssuedInvitation{}, &verr
	} else if !errors.Is(err, store.ErrNotFound) {
		return IssuedInvitation{}, fmt.Errorf("check existing account: %w", err)
	}

	// 4. Supersede and insert in one transaction, once more on a race. A
	// concurrent issue shows up as a duplicate pending row or as a lost
	// transition on the previous one.
	var res issueResult
	for attempt := 0; attempt < 2; attempt++ {
		res, err = s.issueTx(ctx, email, targetRole, issuer.ID)
		if !errors.Is(err, store.ErrAlreadyExists) && !errors.Is(err, store.ErrConflict) {
			break
		}
		log.Debug("invitation insert raced, retrying", slog.Int("attempt", attempt+1))
	}
	if err != nil {
		log.Error("failed to issue invitation", slog.Any("error", err))
		return IssuedInvitation{}, fmt.Errorf("issue invitation: %w", err)
	}

	// 5. Audit after commit.
	issued := res.Issued
	if res.Superseded != "" {
		s.Metrics.InvitationRevoked()
		s.Audit.Record(ctx, audit.InvitationSuperseded, audit.Fields{
			"invitation_id":    res.Superseded,
			"superseded_by_id": issued.Invitation.ID,
			"target_email":     email,
		})
	}
	if res.Expired != "" {
		s.Metrics.InvitationsExpired(1)
		s.Audit.Record(ctx, audit.InvitationsExpired, audit.Fields{
			"invitation_id": res.Expired,
			"count":         "1",
		})
	}
	s.Metrics.InvitationIssued(targetRole.String())
	s.Audit.Record(ctx, audit.InvitationIssued, audit.Fields{
		"invitation_id": issued.Invitation.ID,
		"target_email":  email,
		"target_role":   targetRole.String(),
		"issued_by":     issuer.ID,
		"expires_at":    issued.Invitation.ExpiresAt.Format(time.RFC3339),
	})

	return issued, nil
}

// issueResult says what issueTx did to the previous pending invitation, if
// there was one.
type issueResult struct {
	Issued     IssuedInvitation
	Superseded string
	Expired    string
}

func (s *InvitationService) issueTx(ctx context.Context, email string, role domain.Role, issuerID string) (issueResult, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return issueResult{}, fmt.Errorf("generate token: %w", err)
	}

	now := nowFunc(s.Now)
	inv := domain.Invitation{
		ID:                idx.NewAt(now).String(),
		TargetEmail:       email,
		TokenHash:         cryptox.Digest(token),
		IssuedByAccountID: issuerID,
		TargetRole:        role,
		Status:            domain.InvitationPending,
		IssuedAt:          now,
		ExpiresAt:         now.Add(s.ttl()),
	}

	res := issueResult{Issued: IssuedInvitation{Token: token, Invitation: inv}}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		prev, err := tx.Invitations().GetPendingInvitationByEmail(ctx, email)
		switch {
		case err == nil:
			// A lapsed invitation is already expired, not superseded.
			to := domain.InvitationRevoked
			if prev.EffectiveStatus(now) == domain.InvitationExpired {
				to = domain.InvitationExpired
			}
			if err := tx.Invitations().TransitionInvitation(ctx, prev.ID, domain.InvitationPending, to, now); err != nil {
				return fmt.Errorf("supersede %s: %w", prev.ID, err)
			}
			if to == domain.InvitationExpired {
				res.Expired = prev.ID
			} else {
				res.Superseded = prev.ID
			}
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		return tx.Invitations().CreateInvitation(ctx, inv)
	})
	if err != nil {
		return issueResult{}, err
	}

	return res, nil
}

// Validate looks up a redeemable invitation by its plaintext token. It never
// mutates state. Every failure matches ErrNotFound; the precise reason is
// also in the chain.
func (s *InvitationService) Validate(ctx context.Context, token string) (domain.Invitation, error) {
	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	inv, err := s.lookup(ctx, s.Store, token)
	if err != nil {
		return domain.Invitation{}, err
	}
	if err := checkRedeemable(inv, nowFunc(s.Now)); err != nil {
		return domain.Invitation{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return inv, nil
}

// Redeem consumes the invitation for redeemingEmail and returns the role it
// grants. At most one caller ever succeeds for a given token.
func (s *InvitationService) Redeem(ctx context.Context, token, redeemingEmail string) (domain.Role, error) {
	ctx, span := tracer.Start(ctx, "InvitationService.Redeem")
	defer span.End()

	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	var inv domain.Invitation
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		inv, err = s.RedeemTx(ctx, tx, token, redeemingEmail)
		return err
	})
	s.recordRedeem(ctx, inv, redeemingEmail, err)
	if err != nil {
		return "", err
	}
	return inv.TargetRole, nil
}

// RedeemTx is Redeem inside a caller owned transaction. It does not audit;
// the caller records the outcome after commit.
func (s *InvitationService) RedeemTx(ctx context.Context, tx store.Tx, token, redeemingEmail string) (domain.Invitation, error) {
	inv, err := s.lookup(ctx, tx, token)
	if err != nil {
		return domain.Invitation{}, err
	}

	now := nowFunc(s.Now)
	if err := checkRedeemable(inv, now); err != nil {
		return inv, err
	}
	if domain.CanonicalEmail(redeemingEmail) != inv.TargetEmail {
		return inv, ErrEmailMismatch
	}

	if err := tx.Invitations().RedeemInvitation(ctx, inv.ID, now); err != nil {
		if !errors.Is(err, store.ErrConflict) {
			return inv, fmt.Errorf("redeem invitation: %w", err)
		}
		// Lost the race; report whatever won.
		cur, rerr := tx.Invitations().GetInvitationByID(ctx, inv.ID)
		if rerr != nil {
			return inv, ErrAlreadyRedeemed
		}
		if cerr := checkRedeemable(cur, now); cerr != nil {
			return cur, cerr
		}
		return cur, ErrAlreadyRedeemed
	}

	inv.Status = domain.InvitationRedeemed
	inv.RedeemedAt = &now
	return inv, nil
}

func (s *InvitationService) recordRedeem(ctx context.Context, inv domain.Invitation, email string, err error) {
	if err != nil {
		s.Audit.Record(ctx, audit.InvitationRedeemFailed, audit.Fields{
			"invitation_id": inv.ID,
			"redeem_email":  email,
			"reason":        Reason(err),
		})
		return
	}
	s.Metrics.InvitationRedeemed()
	s.Audit.Record(ctx, audit.InvitationRedeemed, audit.Fields{
		"invitation_id": inv.ID,
		"target_email":  inv.TargetEmail,
		"target_role":   inv.TargetRole.String(),
	})
}

// Revoke cancels a pending invitation. Only an admin or the issuer may do so.
func (s *InvitationService) Revoke(ctx context.Context, invitationID, revokedBy string) error {
	ctx, span := tracer.Start(ctx, "InvitationService.Revoke")
	defer span.End()

	log := slogx.FromContext(ctx)
	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	actor, err := s.Store.Accounts().GetAccountByID(ctx, revokedBy)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("load actor: %w", err)
	}

	inv, err := s.Store.Invitations().GetInvitationByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load invitation: %w", err)
	}

	if actor.Role != domain.RoleAdmin && actor.ID != inv.IssuedByAccountID {
		log.Warn("revoke denied",
			slog.String("invitation_id", inv.ID),
			slog.String("actor_id", actor.ID),
		)
		return ErrUnauthorized
	}

	now := nowFunc(s.Now)
	if err := revocable(inv, now); err != nil {
		return err
	}

	err = s.Store.Invitations().TransitionInvitation(ctx, inv.ID, domain.InvitationPending, domain.InvitationRevoked, now)
	if errors.Is(err, store.ErrConflict) {
		cur, rerr := s.Store.Invitations().GetInvitationByID(ctx, inv.ID)
		if rerr != nil {
			return fmt.Errorf("reload invitation: %w", rerr)
		}
		if cerr := revocable(cur, now); cerr != nil {
			return cerr
		}
		return ErrInvalidState
	}
	if err != nil {
		return fmt.Errorf("revoke invitation: %w", err)
	}

	s.Metrics.InvitationRevoked()
	s.Audit.Record(ctx, audit.InvitationRevoked, audit.Fields{
		"invitation_id": inv.ID,
		"target_email":  inv.TargetEmail,
		"revoked_by":    actor.ID,
	})
	return nil
}

// List returns invitation summaries newest first, with lazy expiry applied.
func (s *InvitationService) List(ctx context.Context, filter domain.InvitationFilter) ([]domain.InvitationSummary, error) {
	ctx, cancel := withTimeout(ctx, s.StoreTimeout)
	defer cancel()

	if filter.Status != "" && !filter.Status.Valid() {
		var verr domain.ValidationError
		verr.Add("status", "must be one of pending, redeemed, revoked, expired")
		return nil, &verr
	}
	filter.Email = domain.CanonicalEmail(filter.Email)
	filter.Limit = store.ClampLimit(filter.Limit)

	invs, err := s.list(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}

	now := nowFunc(s.Now)
	out := make([]domain.InvitationSummary, 0, len(invs))
	for _, inv := range invs {
		sum := inv.Summary(now)
		// A stored-pending row past its window is listed as expired; drop it
		// from a pending-only listing.
		if filter.Status != "" && sum.Status != filter.Status {
			continue
		}
		out = append(out, sum)
		if len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *InvitationService) list(ctx context.Context, filter domain.InvitationFilter) ([]domain.Invitation, error) {
	query := func(f domain.InvitationFilter) ([]domain.Invitation, error) {
		return retryOnce(ctx, func() ([]domain.Invitation, error) {
			return s.Store.Invitations().ListInvitations(ctx, f)
		})
	}

	if filter.Status != domain.InvitationExpired {
		return query(filter)
	}

	// Expired rows are either swept or still stored as pending.
	swept, err := query(filter)
	if err != nil {
		return nil, err
	}
	filter.Status = domain.InvitationPending
	pending, err := query(filter)
	if err != nil {
		return nil, err
	}

	merged := append(swept, pending...)
	slices.SortFunc(merged, func(a, b domain.Invitation) int {
		if c := b.IssuedAt.Compare(a.IssuedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return merged, nil
}

func (s *InvitationService) lookup(ctx context.Context, st store.Store, token string) (domain.Invitation, error) {
	if token == "" {
		return domain.Invitation{}, ErrNotFound
	}
	inv, err := st.Invitations().GetInvitationByTokenHash(ctx, cryptox.Digest(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Invitation{}, ErrNotFound
		}
		return domain.Invitation{}, fmt.Errorf("lookup invitation: %w", err)
	}
	return inv, nil
}

func checkRedeemable(inv domain.Invitation, now time.Time) error {
	switch inv.EffectiveStatus(now) {
	case domain.InvitationPending:
		return nil
	case domain.InvitationRedeemed:
		return ErrAlreadyRedeemed
	case domain.InvitationRevoked:
		return ErrRevoked
	case domain.InvitationExpired:
		return ErrExpired
	}
	return ErrInvalidState
}

func revocable(inv domain.Invitation, now time.Time) error {
	switch inv.EffectiveStatus(now) {
	case domain.InvitationPending:
		return nil
	case domain.InvitationRedeemed:
		return ErrInvalidState
	case domain.InvitationRevoked:
		return ErrRevoked
	case domain.InvitationExpired:
		return ErrExpired
	}
	return ErrInvalidState
}

// Reason names the outcome for audit records and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrAlreadyRedeemed):
		return "already_redeemed"
	case errors.Is(err, ErrRevoked):
		return "revoked"
	case errors.Is(err, ErrEmailMismatch):
		return "email_mismatch"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	}
	return "error"
}
