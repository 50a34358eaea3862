package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeRendered = "rendered"
	OutcomeFailed   = "failed"
)

// Metrics tracks generation cycles. A nil *Metrics records nothing.
type Metrics struct {
	cycles        *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snarky_facts_cycles_total",
				Help: "Generation cycles by final outcome",
			},
			[]string{"outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "snarky_facts_stage_duration_seconds",
				Help:    "Time spent in each step of a cycle",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"stage"},
		),
		stageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snarky_facts_stage_errors_total",
				Help: "Failed steps by stage",
			},
			[]string{"stage"},
		),
	}

	reg.MustRegister(m.cycles, m.stageDuration, m.stageErrors)

	return m
}

func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (m *Metrics) CycleFinished(outcome string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(outcome).Inc()
}
