package telemetry_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/squadgate/internal/access/telemetry"
	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	p, err := telemetry.Setup(context.Background(), "squadgate", "test", "")
	require.NoError(t, err)
	require.False(t, p.Enabled())

	called := false
	h := p.Middleware("test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.True(t, called)
	require.NoError(t, p.Shutdown(context.Background()))
}
