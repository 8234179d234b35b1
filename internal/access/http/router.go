package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/metrics"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/internal/access/telemetry"
	"github.com/aussiebroadwan/squadgate/pkg/httpx"
	"github.com/aussiebroadwan/squadgate/pkg/jwtx"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
	"github.com/aussiebroadwan/squadgate/pkg/squadsdk"

	_ "github.com/aussiebroadwan/squadgate/api/squadgate" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits are the three limiter profiles applied per route.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultRateLimits are the production profiles.
var DefaultRateLimits = RateLimits{
	Strict:   httpx.StrictLimit,
	Moderate: httpx.ModerateLimit,
	Lenient:  httpx.LenientLimit,
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeyManager
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	InvitationService *service.InvitationService
	Gate              *service.Gate
	AccountService    *service.AccountService

	// CallbackSecret authenticates the identity provider callback. Empty
	// disables sign-in.
	CallbackSecret string
	SessionTTL     time.Duration
	Limits         RateLimits

	Metrics   *metrics.Metrics
	Telemetry *telemetry.Provider
}

func NewRouter(
	keys *jwtx.KeyManager,
	issuer, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		SessionTTL:   jwtx.DefaultSessionTTL,
		Limits:       DefaultRateLimits,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	if r.Telemetry.Enabled() {
		r.middlewares = append([]httpx.Middleware{r.Telemetry.Middleware("squadgate")}, r.middlewares...)
	}

	r.registerSignIn()
	r.registerInvitations()
	r.registerAccounts()
	r.registerAudit()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Squadgate Access Service API
//	@version		0.1.0
//	@description	Invitation and sign-in authorization for the squad management app.
//	@description
//	@description				Session tokens are EdDSA signed JWTs and can be verified with the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/squadgate
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
//
//	@securityDefinitions.apikey	CallbackSecret
//	@in							header
//	@name						X-Callback-Secret
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSignIn() {
	h := &SignInHandler{
		Gate:   r.Gate,
		Keys:   r.keys,
		Issuer: r.issuer,
		TTL:    r.SessionTTL,
	}

	// Machine to machine from the web tier; strict by IP in case the secret leaks.
	r.Mux.Handle("POST /v1/signin",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.Limits.Strict),
			httpx.RequireSecret(squadsdk.CallbackSecretHeader, r.CallbackSecret),
		),
	)
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{Invitations: r.InvitationService}

	issuers := []string{string(domain.RoleAdmin), string(domain.RoleScrumMaster)}

	r.Mux.Handle("POST /v1/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleIssue),
			httpx.AuthnMiddleware(r.keys.Verifier),
			httpx.RequireRole(issuers...),
			httpx.RateLimitByAccount(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("GET /v1/invitations",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.keys.Verifier),
			httpx.RequireRole(issuers...),
			httpx.RateLimitByAccount(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("POST /v1/invitations/{id}/revoke",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			httpx.AuthnMiddleware(r.keys.Verifier),
			httpx.RequireRole(issuers...),
			httpx.RateLimitByAccount(r.Limits.Moderate),
		),
	)

	// Public pre-check of an invitation link; strict to slow token guessing.
	r.Mux.Handle("POST /v1/invitations/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{Accounts: r.AccountService}

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.keys.Verifier),
			httpx.RateLimitByAccount(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /v1/accounts",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.keys.Verifier),
			httpx.RequireRole(string(domain.RoleAdmin)),
			httpx.RateLimitByAccount(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("PATCH /v1/accounts/{id}/role",
		httpx.Chain(http.HandlerFunc(h.HandleChangeRole),
			httpx.AuthnMiddleware(r.keys.Verifier),
			httpx.RequireRole(string(domain.RoleAdmin)),
			httpx.RateLimitByAccount(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerAudit() {
	h := &AuditHandler{Store: r.store}

	r.Mux.Handle("GET /v1/audit",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.keys.Verifier),
			httpx.RequireRole(string(domain.RoleAdmin)),
			httpx.RateLimitByAccount(r.Limits.Lenient),
		),
	)
}

func (r *Router) registerSystem() {
	// Monitoring systems poll these frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys.KeySet),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys.KeySet),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /metrics", r.Metrics.Handler())
}
