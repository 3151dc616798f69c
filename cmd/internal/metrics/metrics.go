// Package metrics collects Prometheus metrics for the auth surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the handlers depend on; a nil-safe no-op keeps tests and
// metric-less wiring simple.
type Recorder interface {
	RecordRegistration()
	RecordLogin(outcome string)
	RecordRotation()
	RecordReuseDetected()
	RecordLogout()
	ObserveLoginDuration(seconds float64)
}

// Login outcomes recorded on the dealerdesk_logins_total counter.
const (
	OutcomeSuccess       = "success"
	OutcomeNotFound      = "not_found"
	OutcomeBadPassword   = "bad_password"
	OutcomeMissingFields = "missing_fields"
)

// Collector implements Recorder backed by a Prometheus registry.
type Collector struct {
	registrations prometheus.Counter
	logins        *prometheus.CounterVec
	rotations     prometheus.Counter
	reuseDetected prometheus.Counter
	logouts       prometheus.Counter
	loginSeconds  prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dealerdesk_registrations_total",
			Help: "Completed dealer registrations.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dealerdesk_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dealerdesk_refresh_rotations_total",
			Help: "Successful refresh-token rotations.",
		}),
		reuseDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dealerdesk_refresh_reuse_detected_total",
			Help: "Rotated refresh tokens presented again.",
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dealerdesk_logouts_total",
			Help: "Logout requests carrying a refresh token.",
		}),
		loginSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dealerdesk_login_duration_seconds",
			Help:    "Wall time of login handling, password verification included.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.rotations,
		c.reuseDetected,
		c.logouts,
		c.loginSeconds,
	)

	return c
}

func (c *Collector) RecordRegistration()          { c.registrations.Inc() }
func (c *Collector) RecordLogin(outcome string)   { c.logins.WithLabelValues(outcome).Inc() }
func (c *Collector) RecordRotation()              { c.rotations.Inc() }
func (c *Collector) RecordReuseDetected()         { c.reuseDetected.Inc() }
func (c *Collector) RecordLogout()                { c.logouts.Inc() }

func (c *Collector) ObserveLoginDuration(seconds float64) { c.loginSeconds.Observe(seconds) }

// Noop is a Recorder that drops everything.
type Noop struct{}

func (Noop) RecordRegistration()        {}
func (Noop) RecordLogin(string)         {}
func (Noop) RecordRotation()            {}
func (Noop) RecordReuseDetected()       {}
func (Noop) RecordLogout()              {}
func (Noop) ObserveLoginDuration(float64) {}
