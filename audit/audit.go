// Package audit records issue/verify outcomes to a durable trail. It
// generalizes the teacher's internal/audit.Log (a single structured JSON
// line per event) into a Sink interface so a host can choose between the
// zero-config logging sink and a queryable Postgres-backed one.
//
// Unlike ratelimit, this package does import magiclink: AuditSink's Record
// method is typed on magiclink.AuditEvent, and Go has no way to satisfy that
// signature without naming the type.
package audit

import "github.com/dropDatabas3/magiclink"

// Sink records magiclink.AuditEvents. Both LoggingSink and PostgresSink
// implement magiclink.AuditSink directly.
type Sink interface {
	Record(event magiclink.AuditEvent)
}
