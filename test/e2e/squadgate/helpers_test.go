package squadgate_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/app"
	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/service"
	"github.com/aussiebroadwan/squadgate/pkg/squadsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run the full application against a throwaway Postgres
 * and drive it over HTTP with the SDK.
 */

const (
	callbackSecret = "e2e-callback-secret"
	adminEmail     = "admin@example.com"
)

type harness struct {
	Client *squadsdk.Client
	Admin  *squadsdk.Session
	URL    string
}

// startPostgres starts a container and returns its connection URL. Skipped
// in -short mode or when no container runtime is available.
func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e test skipped in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "squadgate",
			"POSTGRES_PASSWORD": "squadgate",
			"POSTGRES_DB":       "squadgate",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("container runtime unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://squadgate:squadgate@%s:%s/squadgate?sslmode=disable", host, port.Port())
}

// setupService boots the application on Postgres with relaxed rate limits,
// seeds an admin and signs it in.
func setupService(t *testing.T) *harness {
	t.Helper()
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "1000")
	t.Setenv("RATELIMIT_STRICT_BURST", "1000")
	t.Setenv("RATELIMIT_MODERATE_REQUESTS", "1000")
	t.Setenv("RATELIMIT_MODERATE_BURST", "1000")
	return setupServiceWithDefaultRateLimits(t)
}

// setupServiceWithDefaultRateLimits is setupService with production limits.
func setupServiceWithDefaultRateLimits(t *testing.T) *harness {
	t.Helper()
	url := startPostgres(t)

	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", url)
	t.Setenv("CALLBACK_SECRET", callbackSecret)
	t.Setenv("SESSION_NUM_KEYS", "1")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := app.ParseConfig()
	require.NoError(t, err)

	// Bootstrap the first admin the way squadctl does.
	st, err := app.OpenStore(t.Context(), cfg)
	require.NoError(t, err)
	_, err = (&service.AccountService{Store: st}).Upsert(t.Context(), domain.AccountInput{
		Email: adminEmail,
		Role:  domain.RoleAdmin,
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	application, err := app.New(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = application.Shutdown()
	})

	client := squadsdk.NewClient(srv.URL, callbackSecret)
	resp, err := client.SignIn(t.Context(), squadsdk.SignInRequest{Email: adminEmail})
	require.NoError(t, err, "seeded admin should be admitted")

	return &harness{
		Client: client,
		Admin:  client.NewSession(resp.AccessToken),
		URL:    srv.URL,
	}
}

// invite issues an invitation as the admin and returns the token.
func (h *harness) invite(t *testing.T, email, role string) *squadsdk.IssueInvitationResponse {
	t.Helper()
	resp, err := h.Admin.IssueInvitation(t.Context(), squadsdk.IssueInvitationRequest{TargetEmail: email, TargetRole: role})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	return resp
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *squadsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
