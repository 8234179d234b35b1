package squadgate_test

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthEndpoints(t *testing.T) {
	h := setupService(t)

	health, err := h.Client.GetLiveness(t.Context())
	assertHealthy(t, health, err)

	health, err = h.Client.GetReadiness(t.Context())
	assertHealthy(t, health, err)
	require.Equal(t, "ok", health.Checks.Database)

	jwks, err := h.Client.GetJWKS(t.Context())
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
}
