// Package metrics exposes Prometheus instrumentation for parse calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Gennadiyev/xplit-pay/internal/xplit"
)

// Metrics holds the collectors for the parse pipeline. A nil *Metrics is
// valid and records nothing, so library callers can pass it through without
// caring whether instrumentation is wired up.
type Metrics struct {
	parsesTotal   prometheus.Counter
	parseErrors   *prometheus.CounterVec
	parseDuration prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		parsesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xplit_parses_total",
			Help: "Number of document parse attempts.",
		}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "xplit_parse_errors_total",
			Help: "Parse failures by error kind.",
		}, []string{"kind"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "xplit_parse_duration_seconds",
			Help:    "Wall time of document parse calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.parsesTotal, m.parseErrors, m.parseDuration)
	return m
}

// ObserveParse records one parse attempt.
func (m *Metrics) ObserveParse(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.parsesTotal.Inc()
	m.parseDuration.Observe(d.Seconds())
	if err != nil {
		kind := xplit.Kind(err)
		if kind == "" {
			kind = "internal"
		}
		m.parseErrors.WithLabelValues(kind).Inc()
	}
}
