package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dropDatabas3/magiclink"
)

// PostgresSink appends events to a table, the durable counterpart to
// LoggingSink, grounded on the teacher's cmd/seed use of pgxpool.Pool for
// plain inserts. Record never blocks the caller on error: a failed insert is
// logged and dropped, matching the spec's requirement that auditing never
// influence the issue/verify outcome it is reporting on.
type PostgresSink struct {
	pool  *pgxpool.Pool
	table string
	log   *zap.Logger
}

// NewPostgresSink builds a PostgresSink writing to table (default
// "magiclink_audit_log"). Callers are expected to have already created the
// table; this package does not run migrations.
func NewPostgresSink(pool *pgxpool.Pool, table string, log *zap.Logger) *PostgresSink {
	if table == "" {
		table = "magiclink_audit_log"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresSink{pool: pool, table: table, log: log.Named("audit")}
}

// Record satisfies magiclink.AuditSink and audit.Sink.
func (s *PostgresSink) Record(event magiclink.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+s.table+` (kind, subject, kid, jti, ok, reason, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.Kind, event.Subject, event.KID, event.JTI, event.OK, string(event.Reason), time.Now().UTC())
	if err != nil {
		s.log.Warn("audit insert failed",
			zap.String("kind", event.Kind),
			zap.String("subject", event.Subject),
			zap.Error(err),
		)
	}
}
