package http

import (
	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/pkg/squadsdk"
)

func toAccount(a domain.Account) squadsdk.Account {
	return squadsdk.Account{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        a.Role.String(),
		CreatedAt:   a.CreatedAt.Unix(),
		UpdatedAt:   a.UpdatedAt.Unix(),
	}
}

func toInvitationSummary(s domain.InvitationSummary) squadsdk.InvitationSummary {
	return squadsdk.InvitationSummary{
		ID:          s.ID,
		TargetEmail: s.TargetEmail,
		TargetRole:  s.TargetRole.String(),
		Status:      string(s.Status),
		IssuedBy:    s.IssuedByAccountID,
		IssuedAt:    s.IssuedAt.Unix(),
		ExpiresAt:   s.ExpiresAt.Unix(),
	}
}

func toAuditEvent(e domain.AuditEvent) squadsdk.AuditEvent {
	return squadsdk.AuditEvent{
		ID:         e.ID,
		Event:      e.Event,
		Fields:     e.Fields,
		OccurredAt: e.OccurredAt.Unix(),
	}
}
