// Package metrics holds the Prometheus collectors for the access service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "squadgate"

// Metrics is nil-safe: every method on a nil *Metrics is a no-op so tests and
// the CLI can run without a registry.
type Metrics struct {
	registry *prometheus.Registry

	invitationsIssued   *prometheus.CounterVec
	invitationsRedeemed prometheus.Counter
	invitationsRevoked  prometheus.Counter
	invitationsExpired  prometheus.Counter
	signInDecisions     *prometheus.CounterVec
}

// New registers all collectors, plus Go and process collectors, on a fresh
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		invitationsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_issued_total",
			Help:      "Invitations issued, by granted role.",
		}, []string{"role"}),
		invitationsRedeemed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_redeemed_total",
			Help:      "Invitations redeemed.",
		}),
		invitationsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_revoked_total",
			Help:      "Invitations revoked, explicitly or by supersession.",
		}),
		invitationsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_expired_total",
			Help:      "Pending invitations marked expired by the sweep.",
		}),
		signInDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signin_decisions_total",
			Help:      "Sign-in gate decisions.",
		}, []string{"decision", "path"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.invitationsIssued,
		m.invitationsRedeemed,
		m.invitationsRevoked,
		m.invitationsExpired,
		m.signInDecisions,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) InvitationIssued(role string) {
	if m != nil {
		m.invitationsIssued.WithLabelValues(role).Inc()
	}
}

func (m *Metrics) InvitationRedeemed() {
	if m != nil {
		m.invitationsRedeemed.Inc()
	}
}

func (m *Metrics) InvitationRevoked() {
	if m != nil {
		m.invitationsRevoked.Inc()
	}
}

func (m *Metrics) InvitationsExpired(n int64) {
	if m != nil && n > 0 {
		m.invitationsExpired.Add(float64(n))
	}
}

// SignInDecision counts one gate outcome. path is "existing", "invitation"
// or "none".
func (m *Metrics) SignInDecision(admit bool, path string) {
	if m == nil {
		return
	}
	decision := "deny"
	if admit {
		decision = "admit"
	}
	m.signInDecisions.WithLabelValues(decision, path).Inc()
}
