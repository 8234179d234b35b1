package domain

import "time"

// InvitationStatus is the lifecycle state of an invitation. Every state other
// than pending is terminal.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationRedeemed InvitationStatus = "redeemed"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)

func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationRedeemed, InvitationRevoked, InvitationExpired:
		return true
	}
	return false
}

type Invitation struct {
	ID                string
	TargetEmail       string
	TokenHash         string // hex sha256 of the one-time secret
	IssuedByAccountID string
	TargetRole        Role
	Status            InvitationStatus
	IssuedAt          time.Time
	ExpiresAt         time.Time
	RedeemedAt        *time.Time
	RevokedAt         *time.Time
}

// IsExpiredAt reports whether the validity window has closed at now.
func (i Invitation) IsExpiredAt(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// EffectiveStatus folds lazy expiry into the stored status: a pending row
// past its window reads as expired even before the sweep persists it.
func (i Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && i.IsExpiredAt(now) {
		return InvitationExpired
	}
	return i.Status
}

// InvitationSummary is the listing view. It never carries the token hash.
type InvitationSummary struct {
	ID                string
	TargetEmail       string
	TargetRole        Role
	Status            InvitationStatus
	IssuedByAccountID string
	IssuedAt          time.Time
	ExpiresAt         time.Time
}

func (i Invitation) Summary(now time.Time) InvitationSummary {
	return InvitationSummary{
		ID:                i.ID,
		TargetEmail:       i.TargetEmail,
		TargetRole:        i.TargetRole,
		Status:            i.EffectiveStatus(now),
		IssuedByAccountID: i.IssuedByAccountID,
		IssuedAt:          i.IssuedAt,
		ExpiresAt:         i.ExpiresAt,
	}
}

// InvitationFilter narrows List results. Zero values mean no filter.
type InvitationFilter struct {
	Status InvitationStatus
	Email  string
	Limit  int
}
