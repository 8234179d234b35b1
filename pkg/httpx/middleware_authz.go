package httpx

import (
	"net/http"
	"slices"

	"github.com/aussiebroadwan/squadgate/pkg/cryptox"
)

// RequireRole admits callers whose session role is one of roles. It must run
// after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, RoleFromContext(r.Context())) {
				writeError(w, http.StatusForbidden, "insufficient_role", "caller role may not perform this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSecret guards machine-to-machine endpoints with a shared secret
// carried in header. An empty configured secret rejects every request.
func RequireSecret(header, secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(header)
			if secret == "" || got == "" || !cryptox.Equal(got, secret) {
				writeError(w, http.StatusUnauthorized, "invalid_client", "missing or invalid callback secret")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
