package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/jackc/pgx/v5"
)

type auditEventRow struct {
	ID         string            `db:"id"`
	Event      string            `db:"event"`
	Fields     map[string]string `db:"fields"`
	OccurredAt time.Time         `db:"occurred_at"`
}

type auditEventsRepo struct {
	db querier
}

func (r *auditEventsRepo) AppendAuditEvent(ctx context.Context, e domain.AuditEvent) error {
	fields := e.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_events (id, event, fields, occurred_at) VALUES ($1, $2, $3, $4)`,
		e.ID, e.Event, fields, e.OccurredAt,
	)
	return mapWriteErr(err)
}

func (r *auditEventsRepo) ListAuditEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	rows, _ := r.db.Query(ctx,
		`SELECT id, event, fields, occurred_at FROM audit_events ORDER BY occurred_at DESC, id DESC LIMIT $1`,
		store.ClampLimit(limit),
	)
	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[auditEventRow])
	if err != nil {
		return nil, err
	}

	out := make([]domain.AuditEvent, 0, len(list))
	for _, row := range list {
		out = append(out, domain.AuditEvent{
			ID:         row.ID,
			Event:      row.Event,
			Fields:     row.Fields,
			OccurredAt: row.OccurredAt.UTC(),
		})
	}
	return out, nil
}
