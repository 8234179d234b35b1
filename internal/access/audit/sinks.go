package audit

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/pkg/slogx"
)

// LogSink writes events to the request logger.
type LogSink struct{}

func (LogSink) Write(ctx context.Context, e domain.AuditEvent) error {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, e.Fields[k]))
	}

	slogx.FromContext(ctx).Info("audit",
		slog.String("audit_event", e.Event),
		slog.String("audit_id", e.ID),
		slog.Group("fields", attrs...),
	)
	return nil
}

// StoreSink persists events to the audit_events table.
//
// It writes through the root store, so it must not be called while the same
// goroutine holds a transaction on a single-connection driver.
type StoreSink struct {
	Store   store.Store
	Timeout time.Duration
}

func (s *StoreSink) Write(ctx context.Context, e domain.AuditEvent) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	// Keep the write alive if the request was cancelled after the action.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	return s.Store.AuditEvents().AppendAuditEvent(ctx, e)
}
