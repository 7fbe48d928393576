// Package metrics exposes Prometheus counters for issue/verify outcomes,
// generalizing the teacher's internal/metrics.RegisterRaft pattern
// (standalone metrics package, idempotent registration against any
// registry) to the magic-link issue/verify lifecycle.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dropDatabas3/magiclink"
)

// Recorder implements magiclink.MetricsRecorder. ObserveVerify's second
// argument is typed on magiclink.Reason, so this package imports magiclink
// the same way audit does, to name that type directly.
type Recorder struct {
	issuedTotal    *prometheus.CounterVec
	verifyTotal    *prometheus.CounterVec
	verifyDuration prometheus.Histogram
}

// New builds a Recorder and registers its collectors on reg (or the default
// registry when reg is nil). Registration is idempotent: calling New
// multiple times against the same registry, e.g. from tests, never panics
// or errors on a re-register.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Recorder{
		issuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "magiclink_issued_total",
			Help: "Magic links issued, partitioned by outcome.",
		}, []string{"ok"}),
		verifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "magiclink_verify_total",
			Help: "Magic link verifications, partitioned by outcome and reason.",
		}, []string{"ok", "reason"}),
		verifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "magiclink_verify_duration_seconds",
			Help:    "Wall-clock duration of Verify calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{r.issuedTotal, r.verifyTotal, r.verifyDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return r, nil
}

// ObserveIssue satisfies magiclink.MetricsRecorder.
func (r *Recorder) ObserveIssue(ok bool) {
	r.issuedTotal.WithLabelValues(boolLabel(ok)).Inc()
}

// ObserveVerify satisfies magiclink.MetricsRecorder.
func (r *Recorder) ObserveVerify(ok bool, reason magiclink.Reason) {
	r.verifyTotal.WithLabelValues(boolLabel(ok), string(reason)).Inc()
}

// ObserveVerifyDuration satisfies magiclink.MetricsRecorder.
func (r *Recorder) ObserveVerifyDuration(d time.Duration) {
	r.verifyDuration.Observe(d.Seconds())
}

func boolLabel(ok bool) string {
	if ok {
		return "true"
	}
	return "false"
}
