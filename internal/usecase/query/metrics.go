package query

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the collectors the service reports to. Any of them may be nil.
type Metrics struct {
	RowsTotal           *prometheus.CounterVec   // label: source
	FailuresTotal       *prometheus.CounterVec   // label: source
	CallDuration        *prometheus.HistogramVec // label: source
	QueriesTotal        *prometheus.CounterVec   // label: stage
	InterpretationTotal *prometheus.CounterVec   // label: status
}

func (m Metrics) rows(source string, n int) {
	if m.RowsTotal != nil && n > 0 {
		m.RowsTotal.WithLabelValues(source).Add(float64(n))
	}
}

func (m Metrics) failure(source string) {
	if m.FailuresTotal != nil {
		m.FailuresTotal.WithLabelValues(source).Inc()
	}
}

func (m Metrics) observe(source string, start time.Time) {
	if m.CallDuration != nil {
		m.CallDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	}
}

func (m Metrics) stage(s Stage) {
	if m.QueriesTotal != nil {
		m.QueriesTotal.WithLabelValues(string(s)).Inc()
	}
}

func (m Metrics) interpretation(status string) {
	if m.InterpretationTotal != nil {
		m.InterpretationTotal.WithLabelValues(status).Inc()
	}
}
