package audit

import (
	"go.uber.org/zap"

	"github.com/dropDatabas3/magiclink"
)

// LoggingSink writes one structured log line per event, the same shape as
// the teacher's internal/audit.Log but via zap instead of log.Printf. Zero
// configuration beyond a logger; suitable as the default sink.
type LoggingSink struct {
	log *zap.Logger
}

// NewLoggingSink builds a LoggingSink. A nil log falls back to zap.NewNop().
func NewLoggingSink(log *zap.Logger) *LoggingSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingSink{log: log.Named("audit")}
}

// Record satisfies magiclink.AuditSink and audit.Sink.
func (s *LoggingSink) Record(event magiclink.AuditEvent) {
	fields := []zap.Field{
		zap.String("kind", event.Kind),
		zap.String("subject", event.Subject),
		zap.String("kid", event.KID),
		zap.String("jti", event.JTI),
		zap.Bool("ok", event.OK),
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", string(event.Reason)))
	}
	if event.OK {
		s.log.Info("magiclink event", fields...)
		return
	}
	s.log.Warn("magiclink event", fields...)
}
