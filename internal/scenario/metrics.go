package scenario

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the run counters. A nil *Metrics records nothing.
type Metrics struct {
	Cases        *prometheus.CounterVec
	CaseDuration *prometheus.HistogramVec
	Steps        *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	cases := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pagecheck",
		Name:      "cases_total",
		Help:      "Cases run, by top-level suite and status.",
	}, []string{"suite", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pagecheck",
		Name:      "case_duration_seconds",
		Help:      "Wall time of executed cases, setup included.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"suite"})

	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pagecheck",
		Name:      "steps_total",
		Help:      "Steps executed, by action and outcome (ok, failed).",
	}, []string{"action", "outcome"})

	reg.MustRegister(cases, duration, steps)

	return &Metrics{
		Cases:        cases,
		CaseDuration: duration,
		Steps:        steps,
	}
}

func (m *Metrics) observeCase(r Result) {
	if m == nil {
		return
	}
	suite := r.Case.TopSuite()
	m.Cases.WithLabelValues(suite, string(r.Status)).Inc()
	if r.Status != StatusTodo && r.Status != StatusSkipped {
		m.CaseDuration.WithLabelValues(suite).Observe(r.Duration.Seconds())
	}
}

func (m *Metrics) observeStep(action Action, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.Steps.WithLabelValues(string(action), outcome).Inc()
}
