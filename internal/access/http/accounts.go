package http

import (
	"encoding/json"
	"net/http"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/pkg/httpx"
	"github.com/aussiebroadwan/squadgate/pkg/idx"
	"github.com/aussiebroadwan/squadgate/pkg/squadsdk"
)

type AccountsHandler struct {
	Accounts *service.AccountService
}

// HandleMe godoc
//
//	@Summary		Current Account
//	@Description	Returns the account behind the session token with its current stored role.
//	@Tags			Accounts
//	@Produce		json
//	@Success		200	{object}	squadsdk.Account		"account"
//	@Failure		401	{object}	squadsdk.ErrorResponse	"invalid_token"
//	@Failure		404	{object}	squadsdk.ErrorResponse	"not_found"
//	@Security		BearerAuth
//	@Router			/v1/me [get].
func (h *AccountsHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	acct, err := h.Accounts.Get(ctx, httpx.AccountIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err, "get current account")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}

// HandleList godoc
//
//	@Summary		List Accounts
//	@Tags			Accounts
//	@Produce		json
//	@Param			limit	query		int								false	"Max results (default 100, max 1000)"
//	@Success		200		{object}	squadsdk.ListAccountsResponse	"accounts"
//	@Failure		401		{object}	squadsdk.ErrorResponse			"invalid_token"
//	@Failure		403		{object}	squadsdk.ErrorResponse			"insufficient_role"
//	@Security		BearerAuth
//	@Router			/v1/accounts [get].
func (h *AccountsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		squadsdk.ValidationError(map[string]string{"limit": "must be a positive integer"}).WriteError(w)
		return
	}

	accounts, err := h.Accounts.List(r.Context(), limit)
	if err != nil {
		writeServiceError(w, r, err, "list accounts")
		return
	}

	resp := squadsdk.ListAccountsResponse{Accounts: make([]squadsdk.Account, 0, len(accounts))}
	for _, a := range accounts {
		resp.Accounts = append(resp.Accounts, toAccount(a))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleChangeRole godoc
//
//	@Summary		Change Account Role
//	@Description	Sets the role of an account. Admin only. Existing session tokens keep their old role until they expire.
//	@Tags			Accounts
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Account ID"
//	@Param			request	body		squadsdk.ChangeRoleRequest	true	"New role"
//	@Success		200		{object}	squadsdk.Account			"updated account"
//	@Failure		400		{object}	squadsdk.ErrorResponse		"validation_error"
//	@Failure		403		{object}	squadsdk.ErrorResponse		"unauthorized"
//	@Failure		404		{object}	squadsdk.ErrorResponse		"not_found"
//	@Security		BearerAuth
//	@Router			/v1/accounts/{id}/role [patch].
func (h *AccountsHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req squadsdk.ChangeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		squadsdk.NewAPIError(http.StatusBadRequest, squadsdk.ErrorCodeInvalidRequest, "Invalid JSON body").WriteError(w)
		return
	}

	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, service.ErrAccountNotFound, "change role")
		return
	}

	acct, err := h.Accounts.ChangeRole(ctx, id.String(), domain.Role(req.Role), httpx.AccountIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err, "change role")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toAccount(acct))
}
