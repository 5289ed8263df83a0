package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Collector holds the run's metrics. A nil *Collector is valid and records
// nothing, so components can treat metrics as optional.
type Collector struct {
	registry *prometheus.Registry

	requestAttempts *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tasksTotal      *prometheus.CounterVec
	tasksInFlight   prometheus.Gauge
	planRecords     *prometheus.GaugeVec
}

// NewCollector creates a collector registered on its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		requestAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_request_attempts_total",
				Help:      "Completion request attempts, including retries",
			},
			[]string{"outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_request_duration_seconds",
				Help:      "Duration of a single completion request attempt",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"outcome"},
		),
		tasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Tasks that reached a terminal state",
			},
			[]string{"outcome"},
		),
		tasksInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tasks_in_flight",
				Help:      "Tasks currently executing on a worker",
			},
		),
		planRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "plan_records",
				Help:      "Input records by planning decision",
			},
			[]string{"state"},
		),
	}
}

// ObserveRequest records one completion request attempt.
func (c *Collector) ObserveRequest(outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.requestAttempts.WithLabelValues(outcome).Inc()
	c.requestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// TaskStarted marks a task as executing.
func (c *Collector) TaskStarted() {
	if c == nil {
		return
	}
	c.tasksInFlight.Inc()
}

// TaskFinished marks a task as terminal, failed when err is non-nil.
func (c *Collector) TaskFinished(err error) {
	if c == nil {
		return
	}
	c.tasksInFlight.Dec()
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	c.tasksTotal.WithLabelValues(outcome).Inc()
}

// SetPlan records how the planner classified the input records.
func (c *Collector) SetPlan(planned, alreadyDone, skipped int) {
	if c == nil {
		return
	}
	c.planRecords.WithLabelValues("planned").Set(float64(planned))
	c.planRecords.WithLabelValues("already_done").Set(float64(alreadyDone))
	c.planRecords.WithLabelValues("skipped").Set(float64(skipped))
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
