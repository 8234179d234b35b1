package sqlite

import (
	"context"
	"encoding/json"

	"github.com/aussiebroadwan/squadgate/internal/access/domain"
	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/jmoiron/sqlx"
)

type auditEventRow struct {
	ID         string `db:"id"`
	Event      string `db:"event"`
	Fields     string `db:"fields"`
	OccurredAt int64  `db:"occurred_at"`
}

type auditEventsRepo struct {
	db sqlx.ExtContext
}

func (r *auditEventsRepo) AppendAuditEvent(ctx context.Context, e domain.AuditEvent) error {
	fields, err := json.Marshal(e.Fields)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, event, fields, occurred_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Event, string(fields), toMillis(e.OccurredAt),
	)
	return mapWriteErr(err)
}

func (r *auditEventsRepo) ListAuditEvents(ctx context.Context, limit int) ([]domain.AuditEvent, error) {
	var rows []auditEventRow
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT id, event, fields, occurred_at FROM audit_events ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		store.ClampLimit(limit),
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AuditEvent, 0, len(rows))
	for _, row := range rows {
		e := domain.AuditEvent{
			ID:         row.ID,
			Event:      row.Event,
			OccurredAt: fromMillis(row.OccurredAt),
		}
		if err := json.Unmarshal([]byte(row.Fields), &e.Fields); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
