// Copyright © 2024 The NRefactory authors

package lint

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by passes. A nil
// *Metrics records nothing.
type Metrics struct {
	PassesTotal         prometheus.Counter
	PassesCanceledTotal prometheus.Counter
	DiagnosticsTotal    *prometheus.CounterVec
	PassDuration        prometheus.Histogram
	CacheHitsTotal      prometheus.Counter
}

// NewMetrics creates the pass collectors and registers them with reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PassesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nrlint_passes_total",
				Help: "Total number of completed analysis passes",
			},
		),
		PassesCanceledTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nrlint_passes_canceled_total",
				Help: "Total number of analysis passes canceled before completion",
			},
		),
		DiagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nrlint_diagnostics_total",
				Help: "Total number of diagnostics reported",
			},
			[]string{"rule"},
		),
		PassDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nrlint_pass_duration_seconds",
				Help:    "Analysis pass duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "nrlint_cache_hits_total",
				Help: "Total number of files served from the result cache",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.PassesTotal,
			m.PassesCanceledTotal,
			m.DiagnosticsTotal,
			m.PassDuration,
			m.CacheHitsTotal,
		)
	}
	return m
}

func (m *Metrics) observePass(diags []Diagnostic, canceled bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PassDuration.Observe(elapsed.Seconds())
	if canceled {
		m.PassesCanceledTotal.Inc()
		return
	}
	m.PassesTotal.Inc()
	for _, d := range diags {
		m.DiagnosticsTotal.WithLabelValues(d.ID()).Inc()
	}
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}
