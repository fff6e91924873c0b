package close

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditLogger persists close audit events to Postgres.
type AuditLogger struct {
	pool *pgxpool.Pool
}

// NewAuditLogger constructs an audit logger backed by the given pool.
func NewAuditLogger(pool *pgxpool.Pool) *AuditLogger {
	return &AuditLogger{pool: pool}
}

// Record persists the audit event.
func (l *AuditLogger) Record(ctx context.Context, event AuditEvent) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if event.Action == "" || event.ClientID == "" {
		return errors.New("audit event requires action and client")
	}
	metaJSON, err := json.Marshal(event.Meta)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO audit_events (actor_id, action, client_id, period, meta, occurred_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`,
		event.ActorID, event.Action, event.ClientID, event.Period, metaJSON, event.At)
	return err
}
