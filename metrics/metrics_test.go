package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/magiclink"
)

func TestRecorder_CountsByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := New(reg)
	require.NoError(t, err)

	r.ObserveIssue(true)
	r.ObserveIssue(false)
	r.ObserveVerify(false, magiclink.ReasonTokenExpired)

	require.Equal(t, float64(1), testutil.ToFloat64(r.issuedTotal.WithLabelValues("true")))
	require.Equal(t, float64(1), testutil.ToFloat64(r.issuedTotal.WithLabelValues("false")))
	require.Equal(t, float64(1), testutil.ToFloat64(r.verifyTotal.WithLabelValues("false", string(magiclink.ReasonTokenExpired))))
}

func TestNew_IdempotentOnSameRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	require.NoError(t, err, "registering a second Recorder against the same registry must not error")
}
