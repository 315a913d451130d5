// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// PipelineStages counts every stage the orchestrator enters, by outcome.
	PipelineStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_pipeline_stages_total",
			Help: "Pipeline stages visited, by stage and outcome",
		},
		[]string{"stage", "outcome"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "compliance_pipeline_duration_seconds",
			Help:    "End-to-end pipeline duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 240},
		},
		[]string{"status"},
	)

	ExternalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_external_calls_total",
			Help: "Calls to external agent endpoints, by service and status code",
		},
		[]string{"service", "status"},
	)

	ExternalRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_external_retries_total",
			Help: "Retried attempts against external agent endpoints",
		},
		[]string{"service"},
	)

	RegulationsCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compliance_regulations_cache_total",
			Help: "Regulations answer cache lookups, by result",
		},
		[]string{"result"},
	)
)
