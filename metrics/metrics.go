// Package metrics exposes Prometheus counters for gateway probes and mint
// attempts. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cnftmint"

// Probe operations.
const (
	OpFetch = "fetch"
	OpProbe = "probe"
)

type Metrics struct {
	probes *prometheus.CounterVec
	mints  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests usually want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Gateway requests by operation and outcome.",
		}, []string{"op", "outcome"}),
		mints: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mint_attempts_total",
			Help:      "Mint submissions by phase and outcome kind.",
		}, []string{"phase", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.probes, m.mints)
	}
	return m
}

// Probe records one gateway request.
func (m *Metrics) Probe(op string, ok bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	m.probes.WithLabelValues(op, outcome).Inc()
}

// MintAttempt records one submission (or a rejection before submission).
func (m *Metrics) MintAttempt(phase, outcome string) {
	if m == nil {
		return
	}
	m.mints.WithLabelValues(phase, outcome).Inc()
}

// ProbeCounter returns the underlying counter for op/outcome, for tests and
// dashboards that want a single series.
func (m *Metrics) ProbeCounter(op, outcome string) prometheus.Counter {
	return m.probes.WithLabelValues(op, outcome)
}

// MintCounter returns the underlying counter for phase/outcome.
func (m *Metrics) MintCounter(phase, outcome string) prometheus.Counter {
	return m.mints.WithLabelValues(phase, outcome)
}
