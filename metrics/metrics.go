package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CallsTotal tracks call attempts per operation and outcome
	CallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpcall_calls_total",
			Help: "Total number of call attempts",
		},
		[]string{"operation", "outcome"},
	)

	// ErrorsTotal tracks failed attempts per operation and status code
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpcall_errors_total",
			Help: "Total number of failed call attempts",
		},
		[]string{"operation", "code"},
	)

	// RetriesTotal tracks retries of transient stream resets
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpcall_retries_total",
			Help: "Total number of transient stream-reset retries",
		},
		[]string{"operation"},
	)

	// CallLatency tracks per-attempt latency
	CallLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "grpcall_call_latency_seconds",
			Help:    "Call attempt latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// ProbeChecksTotal tracks health-check probe outcomes
	ProbeChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpcall_probe_checks_total",
			Help: "Total number of health-check probes",
		},
		[]string{"target", "status"},
	)
)
