package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/pkg/httpx"
	"github.com/aussiebroadwan/squadgate/pkg/jwtx"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
	"github.com/aussiebroadwan/squadgate/pkg/squadsdk"
)

// SignInHandler is the identity provider callback boundary.
type SignInHandler struct {
	Gate   *service.Gate
	Keys   *jwtx.KeyManager
	Issuer string
	TTL    time.Duration
}

// ServeHTTP godoc
//
//	@Summary		Sign-in Gate
//	@Description	Decides a sign-in for an email already verified by the identity provider.
//	@Description	Existing accounts are admitted with their stored role. Unknown emails need a valid invitation token,
//	@Description	which is redeemed and creates the account. Every other outcome is the same 403 access_restricted.
//	@Tags			Sign-in
//	@Accept			json
//	@Produce		json
//	@Param			request	body		squadsdk.SignInRequest			true	"Verified email and optional invitation token"
//	@Success		200		{object}	squadsdk.SignInResponse			"decision, account, session token"
//	@Failure		400		{object}	squadsdk.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	squadsdk.ErrorResponse			"missing or invalid callback secret"
//	@Failure		403		{object}	squadsdk.SignInDeniedResponse	"access restricted"
//	@Failure		500		{object}	squadsdk.ErrorResponse			"error, error_description"
//	@Security		CallbackSecret
//	@Router			/v1/signin [post].
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req squadsdk.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		squadsdk.NewAPIError(http.StatusBadRequest, squadsdk.ErrorCodeInvalidRequest, "Invalid JSON body").WriteError(w)
		return
	}
	if req.Email == "" {
		squadsdk.NewAPIError(http.StatusBadRequest, squadsdk.ErrorCodeInvalidRequest, "email is required").WriteError(w)
		return
	}

	decision, err := h.Gate.SignIn(ctx, service.SignInAttempt{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		InviteToken: req.InviteToken,
	})
	if err != nil {
		log.Error("sign-in gate failed", "err", err)
		squadsdk.ErrServerError.WriteError(w)
		return
	}

	if !decision.Admit {
		log.Info("sign-in denied", "path", decision.Path, "reason", decision.Reason)
		httpx.WriteJSON(w, http.StatusForbidden, squadsdk.SignInDeniedResponse{
			Decision:         "deny",
			Error:            squadsdk.ErrorCodeAccessRestricted,
			ErrorDescription: squadsdk.ErrAccessRestricted.Description,
		})
		return
	}

	acct := decision.Account
	ttl := h.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	claims := jwtx.NewSessionClaims(acct.ID, acct.Role.String(), acct.Email, h.Issuer, ttl, time.Now())

	token, err := h.Keys.GetSigner().Sign(claims)
	if err != nil {
		log.Error("failed to sign session token", "err", err)
		squadsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, squadsdk.SignInResponse{
		Decision:    "admit",
		AccountID:   acct.ID,
		Email:       acct.Email,
		Role:        acct.Role.String(),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(ttl.Seconds()),
	})
}
