package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/squadgate/internal/access/metrics"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesCounters(t *testing.T) {
	m := metrics.New()
	m.InvitationIssued("member")
	m.InvitationRedeemed()
	m.SignInDecision(true, "invitation")
	m.InvitationsExpired(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `squadgate_invitations_issued_total{role="member"} 1`)
	require.Contains(t, string(body), `squadgate_signin_decisions_total{decision="admit",path="invitation"} 1`)
	require.Contains(t, string(body), `squadgate_invitations_expired_total 3`)
}

func TestNilMetrics_NoPanic(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.InvitationIssued("admin")
		m.InvitationRevoked()
		m.SignInDecision(false, "none")
	})
}
