package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Execution outcomes recorded by RunnerMetrics.
const (
	OutcomeSuccess      = "success"
	OutcomeFailure      = "failure"
	OutcomeAutoDisabled = "auto_disabled"
)

// RunnerMetrics records cron execution results.
type RunnerMetrics struct {
	executions   *prometheus.CounterVec
	duration     prometheus.Histogram
	autoDisabled prometheus.Counter
}

// NewRunnerMetrics registers the runner collectors with reg. A nil reg
// registers with the default registry.
func NewRunnerMetrics(reg prometheus.Registerer) *RunnerMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &RunnerMetrics{
		executions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cronhook_executions_total",
			Help: "Total number of cron executions by outcome.",
		}, []string{"outcome"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "cronhook_execution_duration_seconds",
			Help:    "Duration of cron HTTP callbacks in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		autoDisabled: f.NewCounter(prometheus.CounterOpts{
			Name: "cronhook_jobs_auto_disabled_total",
			Help: "Total number of jobs disabled after too many consecutive failures.",
		}),
	}
}

func (m *RunnerMetrics) ObserveExecution(success bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeFailure
	if success {
		outcome = OutcomeSuccess
	}
	m.executions.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *RunnerMetrics) ObserveAutoDisabled() {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(OutcomeAutoDisabled).Inc()
	m.autoDisabled.Inc()
}
