// Package audit records security relevant events. Recording is best effort:
// a failing sink is logged and never surfaces to the caller.
package audit

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/pkg/cryptox"
	"github.com/aussiebroadwan/squadgate/pkg/idx"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
)

// Event names.
const (
	InvitationIssued       = "invitation.issued"
	InvitationSuperseded   = "invitation.superseded"
	InvitationRedeemed     = "invitation.redeemed"
	InvitationRedeemFailed = "invitation.redeem_failed"
	InvitationRevoked      = "invitation.revoked"
	InvitationsExpired     = "invitation.expired"
	SignInAdmitted         = "signin.admitted"
	SignInDenied           = "signin.denied"
	AccountUpserted        = "account.upserted"
	AccountRoleChanged     = "account.role_changed"
)

// Fields are the event attributes. Keys naming an email or token are
// redacted by the Recorder before any sink sees them.
type Fields map[string]string

// Sink receives redacted events.
type Sink interface {
	Write(ctx context.Context, e domain.AuditEvent) error
}

// Recorder fans events out to its sinks. A nil Recorder discards events.
type Recorder struct {
	Sinks []Sink
	Now   func() time.Time
}

// NewRecorder builds a recorder that always logs and, when st is non-nil,
// also persists events.
func NewRecorder(st store.Store) *Recorder {
	r := &Recorder{Sinks: []Sink{LogSink{}}}
	if st != nil {
		r.Sinks = append(r.Sinks, &StoreSink{Store: st})
	}
	return r
}

// Record redacts fields and writes the event to every sink. It never fails.
func (r *Recorder) Record(ctx context.Context, event string, fields Fields) {
	if r == nil {
		return
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	at := now().UTC()

	e := domain.AuditEvent{
		ID:         idx.NewAt(at).String(),
		Event:      event,
		Fields:     Redact(fields),
		OccurredAt: at,
	}

	for _, sink := range r.Sinks {
		r.write(ctx, sink, e)
	}
}

func (r *Recorder) write(ctx context.Context, sink Sink, e domain.AuditEvent) {
	log := slogx.FromContext(ctx)
	defer func() {
		if p := recover(); p != nil {
			log.Error("audit sink panicked", slog.String("event", e.Event), slog.Any("panic", p))
		}
	}()

	if err := sink.Write(ctx, e); err != nil {
		log.Warn("audit sink failed", slog.String("event", e.Event), slog.Any("error", err))
	}
}

// Redact returns a copy of fields with PII replaced by a digest fingerprint.
// Empty PII values are dropped.
func Redact(fields Fields) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if !isSensitive(k) {
			out[k] = v
			continue
		}
		if r := cryptox.Redact(v); r != nil {
			out[k] = *r
		}
	}
	return out
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range []string{"email", "token"} {
		if key == s || strings.HasSuffix(key, "_"+s) {
			return true
		}
	}
	return false
}
