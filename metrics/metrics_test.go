package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Probe(OpFetch, false)
	m.Probe(OpFetch, true)
	m.Probe(OpProbe, true)
	m.MintAttempt("primary", "CollectionAuthorityMismatch")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeCounter(OpFetch, "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeCounter(OpFetch, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeCounter(OpProbe, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MintCounter("primary", "CollectionAuthorityMismatch")))

	n, err := testutil.GatherAndCount(reg, "cnftmint_gateway_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Probe(OpProbe, true)
	m.MintAttempt("primary", "ok")
}
