// Package metrics registers the portal's Prometheus collectors.
//
// All metrics carry the "acadport_" prefix. Methods tolerate a nil
// receiver, so components can take a *Metrics without caring whether
// metrics are enabled.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every collector the portal exports.
type Metrics struct {
	// AuthAttempts counts register/login/verify outcomes.
	// Labels: op=[register, login, verify], role=[student, proctor],
	// outcome=[ok, invalid_credentials, not_found, conflict, error]
	AuthAttempts *prometheus.CounterVec

	// SessionSelfHeals counts stale reverse keys discarded on login.
	SessionSelfHeals prometheus.Counter

	// CacheOpDuration tracks session cache latency by operation.
	// Labels: op=[get, set, del, expire]
	CacheOpDuration *prometheus.HistogramVec
}

// New creates and registers the portal collectors. A nil registerer
// means prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "acadport_auth_attempts_total",
				Help: "Authentication operations by op, role, and outcome",
			},
			[]string{"op", "role", "outcome"},
		),
		SessionSelfHeals: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "acadport_session_self_heals_total",
				Help: "Stale reverse session keys discarded during login",
			},
		),
		CacheOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "acadport_session_cache_op_seconds",
				Help:    "Session cache operation latency by op",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}

	reg.MustRegister(m.AuthAttempts, m.SessionSelfHeals, m.CacheOpDuration)
	return m
}

// Auth outcome labels.
const (
	OutcomeOK                 = "ok"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeNotFound           = "not_found"
	OutcomeConflict           = "conflict"
	OutcomeError              = "error"
)

// ObserveAuth records one authentication attempt.
func (m *Metrics) ObserveAuth(op, role, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(op, role, outcome).Inc()
}

// SelfHeal records one discarded stale reverse key.
func (m *Metrics) SelfHeal() {
	if m == nil {
		return
	}
	m.SessionSelfHeals.Inc()
}

// ObserveCacheOp records the latency of one cache operation.
func (m *Metrics) ObserveCacheOp(op string, start time.Time) {
	if m == nil {
		return
	}
	m.CacheOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
