package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/pkg/httpx"
	"github.com/aussiebroadwan/squadgate/pkg/idx"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
	"github.com/aussiebroadwan/squadgate/pkg/squadsdk"
)

type InvitationsHandler struct {
	Invitations *service.InvitationService
}

// HandleIssue godoc
//
//	@Summary		Issue Invitation
//	@Description	Issues a single-use invitation for an email. Any pending invitation for the same email is revoked.
//	@Description	The token is returned only in this response.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		squadsdk.IssueInvitationRequest		true	"Target email and role"
//	@Success		201		{object}	squadsdk.IssueInvitationResponse	"invitation_id, token, expires_at"
//	@Failure		400		{object}	squadsdk.ErrorResponse				"validation_error with fields"
//	@Failure		401		{object}	squadsdk.ErrorResponse				"invalid_token"
//	@Failure		403		{object}	squadsdk.ErrorResponse				"caller may not grant this role"
//	@Failure		500		{object}	squadsdk.ErrorResponse				"server_error"
//	@Security		BearerAuth
//	@Router			/v1/invitations [post].
func (h *InvitationsHandler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req squadsdk.IssueInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		squadsdk.NewAPIError(http.StatusBadRequest, squadsdk.ErrorCodeInvalidRequest, "Invalid JSON body").WriteError(w)
		return
	}

	role, err := domain.ParseRole(req.TargetRole)
	if err != nil {
		squadsdk.ValidationError(map[string]string{"target_role": "must be one of admin, scrum_master, member"}).WriteError(w)
		return
	}

	issued, err := h.Invitations.Issue(ctx, req.TargetEmail, role, httpx.AccountIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err, "issue invitation")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, squadsdk.IssueInvitationResponse{
		InvitationID: issued.Invitation.ID,
		Token:        issued.Token,
		TargetEmail:  issued.Invitation.TargetEmail,
		TargetRole:   issued.Invitation.TargetRole.String(),
		ExpiresAt:    issued.Invitation.ExpiresAt.Unix(),
	})
}

// HandleList godoc
//
//	@Summary		List Invitations
//	@Description	Lists invitations newest first. Pending invitations past their window are reported as expired.
//	@Description	Tokens are never included.
//	@Tags			Invitations
//	@Produce		json
//	@Param			status	query		string							false	"pending, redeemed, revoked or expired"
//	@Param			email	query		string							false	"Target email"
//	@Param			limit	query		int								false	"Max results (default 100, max 1000)"
//	@Success		200		{object}	squadsdk.ListInvitationsResponse	"invitations"
//	@Failure		400		{object}	squadsdk.ErrorResponse			"validation_error"
//	@Failure		401		{object}	squadsdk.ErrorResponse			"invalid_token"
//	@Failure		403		{object}	squadsdk.ErrorResponse			"insufficient_role"
//	@Security		BearerAuth
//	@Router			/v1/invitations [get].
func (h *InvitationsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		squadsdk.ValidationError(map[string]string{"limit": "must be a positive integer"}).WriteError(w)
		return
	}

	summaries, err := h.Invitations.List(r.Context(), domain.InvitationFilter{
		Status: domain.InvitationStatus(q.Get("status")),
		Email:  q.Get("email"),
		Limit:  limit,
	})
	if err != nil {
		writeServiceError(w, r, err, "list invitations")
		return
	}

	resp := squadsdk.ListInvitationsResponse{Invitations: make([]squadsdk.InvitationSummary, 0, len(summaries))}
	for _, s := range summaries {
		resp.Invitations = append(resp.Invitations, toInvitationSummary(s))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleRevoke godoc
//
//	@Summary		Revoke Invitation
//	@Description	Revokes a pending invitation. Admins may revoke any invitation, scrum masters only their own.
//	@Tags			Invitations
//	@Param			id	path	string	true	"Invitation ID"
//	@Success		204	"Revoked"
//	@Failure		403	{object}	squadsdk.ErrorResponse	"unauthorized"
//	@Failure		404	{object}	squadsdk.ErrorResponse	"not_found"
//	@Failure		409	{object}	squadsdk.ErrorResponse	"expired, revoked or invalid_state"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/revoke [post].
func (h *InvitationsHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, service.ErrNotFound, "revoke invitation")
		return
	}
	if err := h.Invitations.Revoke(ctx, id.String(), httpx.AccountIDFromContext(ctx)); err != nil {
		writeServiceError(w, r, err, "revoke invitation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleValidate godoc
//
//	@Summary		Validate Invitation
//	@Description	Checks whether an invitation token can still be redeemed. Never consumes it.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		squadsdk.ValidateInvitationRequest	true	"Invitation token"
//	@Success		200		{object}	squadsdk.ValidateInvitationResponse	"valid, target_email, target_role, expires_at"
//	@Failure		400		{object}	squadsdk.ErrorResponse				"invalid_request"
//	@Router			/v1/invitations/validate [post].
func (h *InvitationsHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req squadsdk.ValidateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		squadsdk.NewAPIError(http.StatusBadRequest, squadsdk.ErrorCodeInvalidRequest, "Invalid JSON body").WriteError(w)
		return
	}

	inv, err := h.Invitations.Validate(ctx, req.Token)
	if errors.Is(err, service.ErrNotFound) {
		log.Debug("invitation not redeemable", "reason", service.Reason(err))
		httpx.WriteJSON(w, http.StatusOK, squadsdk.ValidateInvitationResponse{Valid: false})
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "validate invitation")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, squadsdk.ValidateInvitationResponse{
		Valid:       true,
		TargetEmail: inv.TargetEmail,
		TargetRole:  inv.TargetRole.String(),
		ExpiresAt:   inv.ExpiresAt.Unix(),
	})
}

func parseLimit(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid limit")
	}
	return n, nil
}
