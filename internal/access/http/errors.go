package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/pkg/squadsdk"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
)

// writeServiceError maps a service error onto the API error body.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		squadsdk.ValidationError(verr.Fields).WriteError(w)
	case errors.Is(err, service.ErrUnauthorized):
		squadsdk.ErrUnauthorized.WriteError(w)
	case errors.Is(err, service.ErrExpired):
		squadsdk.ErrExpired.WriteError(w)
	case errors.Is(err, service.ErrRevoked):
		squadsdk.ErrRevoked.WriteError(w)
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrAlreadyRedeemed):
		squadsdk.ErrInvalidState.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		squadsdk.NewAPIError(http.StatusNotFound, squadsdk.ErrorCodeNotFound, "invitation not found").WriteError(w)
	case errors.Is(err, service.ErrAccountNotFound):
		squadsdk.NewAPIError(http.StatusNotFound, squadsdk.ErrorCodeNotFound, "account not found").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "action", action, "err", err)
		squadsdk.ErrServerError.WriteError(w)
	}
}
