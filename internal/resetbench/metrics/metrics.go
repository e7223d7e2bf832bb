package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const MetricPrefix = "resetbench_"

// Metrics holds the collectors describing one benchmark run.
type Metrics struct {
	gatherer         prometheus.Gatherer
	jobsByState      *prometheus.GaugeVec
	jobsCreated      prometheus.Counter
	anomalies        *prometheus.CounterVec
	resetDuration    *prometheus.HistogramVec
	batchesCompleted prometheus.Counter
	pollRounds       prometheus.Counter
}

// New creates the benchmark collectors and registers them with registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: registry,
		jobsByState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricPrefix + "batch_jobs",
				Help: "Number of jobs in the current batch by lifecycle state",
			},
			[]string{"state"},
		),
		jobsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricPrefix + "jobs_created_total",
				Help: "Number of reset jobs created",
			},
		),
		anomalies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricPrefix + "job_anomalies_total",
				Help: "Number of jobs that finished without producing a sample, by reason",
			},
			[]string{"reason"},
		),
		resetDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricPrefix + "reset_duration_seconds",
				Help:    "Time between a reset job starting and completing",
				Buckets: []float64{1, 5, 10, 20, 30, 45, 60, 90, 120, 180, 300, 600, 1200},
			},
			[]string{"outcome"},
		),
		batchesCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricPrefix + "batches_completed_total",
				Help: "Number of batches in which every job reached a terminal state",
			},
		),
		pollRounds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricPrefix + "poll_rounds_total",
				Help: "Number of job status polling rounds",
			},
		),
	}
	registry.MustRegister(
		m.jobsByState,
		m.jobsCreated,
		m.anomalies,
		m.resetDuration,
		m.batchesCompleted,
		m.pollRounds,
	)
	return m
}

func (m *Metrics) RecordJobCreated() {
	m.jobsCreated.Inc()
}

func (m *Metrics) RecordJobStates(counts map[string]int) {
	for state, count := range counts {
		m.jobsByState.WithLabelValues(state).Set(float64(count))
	}
}

func (m *Metrics) RecordAnomaly(reason string) {
	m.anomalies.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordResetDuration(outcome string, duration time.Duration) {
	m.resetDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Metrics) RecordBatchCompleted() {
	m.batchesCompleted.Inc()
}

func (m *Metrics) RecordPollRound() {
	m.pollRounds.Inc()
}

// Push sends the current value of every collector to the Pushgateway at url under job,
// grouped by runId. Additional gatherers, such as the default registry, are pushed alongside.
func (m *Metrics) Push(url string, job string, runId string, extra ...prometheus.Gatherer) error {
	gatherers := prometheus.Gatherers{m.gatherer}
	gatherers = append(gatherers, extra...)
	err := push.New(url, job).
		Gatherer(gatherers).
		Grouping("run_id", runId).
		Push()
	return errors.Wrapf(err, "pushing metrics to %s", url)
}
