package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics.
type Metrics struct {
	// Saga metrics
	SagaStepsTotal     *prometheus.CounterVec
	SagaRoutedTotal    *prometheus.CounterVec
	SagaFinishedTotal  *prometheus.CounterVec
	UnroutableEvents   prometheus.Counter

	// Worker metrics
	WorkerMessagesProcessed  *prometheus.CounterVec
	WorkerProcessingDuration *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		SagaStepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saga_steps_total",
				Help:      "Participant step executions by participant, operation and outcome",
			},
			[]string{"participant", "operation", "outcome"},
		),
		SagaRoutedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saga_routed_total",
				Help:      "Orchestrator routing decisions by kind",
			},
			[]string{"decision"},
		),
		SagaFinishedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saga_finished_total",
				Help:      "Sagas reaching a terminal status",
			},
			[]string{"status"},
		),
		UnroutableEvents: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saga_unroutable_events_total",
				Help:      "Events sent to the dead-letter topic",
			},
		),
		WorkerMessagesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "worker_messages_processed_total",
				Help:      "Total number of bus messages processed",
			},
			[]string{"topic", "status"},
		),
		WorkerProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "worker_processing_duration_seconds",
				Help:      "Bus message processing duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"topic"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	reg.MustRegister(
		m.SagaStepsTotal,
		m.SagaRoutedTotal,
		m.SagaFinishedTotal,
		m.UnroutableEvents,
		m.WorkerMessagesProcessed,
		m.WorkerProcessingDuration,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
