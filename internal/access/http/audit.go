package http

import (
	"net/http"

	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/pkg/httpx"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
	"github.com/aussiebroadwan/squadgate/pkg/squadsdk"
)

type AuditHandler struct {
	Store store.Store
}

// ServeHTTP godoc
//
//	@Summary		List Audit Events
//	@Description	Returns persisted audit events newest first. Emails and tokens are already redacted to fingerprints.
//	@Tags			Audit
//	@Produce		json
//	@Param			limit	query		int								false	"Max results (default 100, max 1000)"
//	@Success		200		{object}	squadsdk.ListAuditEventsResponse	"events"
//	@Failure		401		{object}	squadsdk.ErrorResponse			"invalid_token"
//	@Failure		403		{object}	squadsdk.ErrorResponse			"insufficient_role"
//	@Security		BearerAuth
//	@Router			/v1/audit [get].
func (h *AuditHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		squadsdk.ValidationError(map[string]string{"limit": "must be a positive integer"}).WriteError(w)
		return
	}

	events, err := h.Store.AuditEvents().ListAuditEvents(ctx, store.ClampLimit(limit))
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list audit events", "err", err)
		squadsdk.ErrServerError.WriteError(w)
		return
	}

	resp := squadsdk.ListAuditEventsResponse{Events: make([]squadsdk.AuditEvent, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, toAuditEvent(e))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
