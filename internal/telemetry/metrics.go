// Package telemetry exposes the Prometheus metrics emitted by the
// pipeline and API binaries.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskpulse_pipeline_messages_consumed_total",
		Help: "Total portfolio snapshots consumed from the ingress topic, by partition.",
	}, []string{"partition"})

	MessagesProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskpulse_pipeline_messages_processed_total",
		Help: "Total portfolio snapshots successfully computed and republished.",
	}, []string{"partition"})

	MessagesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskpulse_pipeline_messages_failed_total",
		Help: "Total portfolio snapshots skipped due to decode, validation, or compute failure.",
	}, []string{"reason"})

	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "riskpulse_pipeline_processing_duration_ms",
		Help:    "Time to decode, compute, and republish one portfolio snapshot.",
		Buckets: prometheus.DefBuckets,
	})

	CacheErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskpulse_cache_errors_total",
		Help: "Total cache write/read errors, by operation.",
	}, []string{"operation"})

	PipelineRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "riskpulse_pipeline_running",
		Help: "1 if the pipeline is actively consuming, 0 otherwise.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "riskpulse_api_requests_total",
		Help: "Total HTTP requests served, by route and status class.",
	}, []string{"route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "riskpulse_api_request_duration_ms",
		Help:    "HTTP request latency, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	SSEActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "riskpulse_api_sse_active_connections",
		Help: "Number of currently open /stream/risk-updates connections.",
	})
)
